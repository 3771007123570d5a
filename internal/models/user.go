package models

import "gorm.io/gorm"

// Roles an authenticated actor may hold.
const (
	RoleCourier   = "courier"
	RoleBusiness  = "business"
	RoleCustomer  = "customer"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBanned   = "banned"
)

// Vehicle types a courier may register with.
const (
	VehicleCar          = "car"
	VehicleMotorcycle   = "motorcycle"
	VehicleElectricMoto = "electric_motorcycle"
	VehicleBicycle      = "bicycle"
)

// User is the single actor record for couriers, businesses, customers and
// admins. Role-specific fields stay empty for the roles that don't use them.
type User struct {
	gorm.Model
	Email        string `json:"email" gorm:"uniqueIndex"`
	Username     string `json:"username" gorm:"uniqueIndex"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"-"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	Status       string `json:"status" gorm:"default:active"`

	// Courier-specific
	VehicleType  string `json:"vehicle_type,omitempty"`
	VehiclePhoto string `json:"vehicle_photo,omitempty"`
	LicensePhoto string `json:"license_photo,omitempty"`

	// Business-specific
	BusinessName string `json:"business_name,omitempty"`

	// Aggregates maintained by the rating and order flows.
	Rating          float64 `json:"rating" gorm:"default:5.0"`
	CompletedOrders int     `json:"completed_orders" gorm:"default:0"`
}

// ValidRole reports whether role is one of the known actor roles.
func ValidRole(role string) bool {
	switch role {
	case RoleCourier, RoleBusiness, RoleCustomer, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// ValidVehicleType reports whether vt is a registrable vehicle type.
func ValidVehicleType(vt string) bool {
	switch vt {
	case VehicleCar, VehicleMotorcycle, VehicleElectricMoto, VehicleBicycle:
		return true
	}
	return false
}
