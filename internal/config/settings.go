package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"mobil_kargo/internal/models"
)

// Settings collects everything the process reads from the environment.
type Settings struct {
	Port      string
	JWTSecret string
	TokenTTL  time.Duration

	// Order pricing. The commission rate is snapshotted onto each order at
	// creation time.
	BaseFee         float64
	PerKGRate       float64
	DefaultWeightKG float64
	CommissionRate  float64

	// Lifecycle selects the direct (pending -> assigned) or approval-gated
	// (pending -> approved -> assigned) order flow.
	Lifecycle models.LifecyclePolicy

	// Mapping provider proxy.
	MapsBaseURL string
	MapsTimeout time.Duration

	// Seed admin account.
	AdminEmail    string
	AdminPassword string
}

// App is the loaded process configuration, set by Load at startup.
var App *Settings

// Load reads .env (if present) and the environment into App.
func Load() *Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	lifecycle, err := models.ParseLifecyclePolicy(getEnv("LIFECYCLE_POLICY", "direct"))
	if err != nil {
		log.Fatalf("invalid LIFECYCLE_POLICY: %v", err)
	}

	App = &Settings{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "supersecret"),
		TokenTTL:        getDuration("JWT_TTL", 72*time.Hour),
		BaseFee:         getFloat("BASE_FEE", 25.0),
		PerKGRate:       getFloat("PER_KG_RATE", 2.0),
		DefaultWeightKG: getFloat("DEFAULT_WEIGHT_KG", 1.0),
		CommissionRate:  getFloat("COMMISSION_RATE", 0.15),
		Lifecycle:       lifecycle,
		MapsBaseURL:     getEnv("MAPS_BASE_URL", "https://nominatim.openstreetmap.org"),
		MapsTimeout:     getDuration("MAPS_TIMEOUT", 5*time.Second),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
	}
	return App
}

// getEnv reads an environment variable or returns the provided default.
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return f
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}
