package config

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mobil_kargo/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment variables
// and migrates the schema.
func InitDB() {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "kargo")
	sslmode := getEnv("DB_SSLMODE", "disable")
	timezone := getEnv("DB_TIMEZONE", "UTC")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.LocationSample{},
		&models.Rating{},
		&models.Tip{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	DB = db
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}

// SeedAdmin ensures the configured admin account exists.
func SeedAdmin() {
	var existing models.User
	err := DB.Where("email = ?", App.AdminEmail).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("could not look up admin user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(App.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("could not hash admin password: %v", err)
	}
	admin := models.User{
		Email:        App.AdminEmail,
		Username:     "admin",
		FullName:     "System Administrator",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Fatalf("could not seed admin user: %v", err)
	}
	log.Printf("Admin user created: %s", App.AdminEmail)
}
