package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order statuses. The lifecycle is
//
//	pending -> approved -> assigned -> picked_up -> in_transit -> delivered
//
// with cancellation reachable from every non-terminal status. Whether a
// courier assigns from pending or from approved is decided by the configured
// LifecyclePolicy, never mixed.
const (
	OrderPending   = "pending"
	OrderApproved  = "approved"
	OrderAssigned  = "assigned"
	OrderPickedUp  = "picked_up"
	OrderInTransit = "in_transit"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// ActiveStatuses are the statuses during which a courier is working the
// order and its customer receives live location updates.
var ActiveStatuses = []string{OrderAssigned, OrderPickedUp, OrderInTransit}

// LifecyclePolicy selects which transition graph applies to new orders.
type LifecyclePolicy string

const (
	// PolicyDirect lets couriers pick up pending orders without an explicit
	// customer approval step.
	PolicyDirect LifecyclePolicy = "direct"

	// PolicyApproval requires the customer to approve a pending order before
	// a courier can take it.
	PolicyApproval LifecyclePolicy = "approval"
)

// ParseLifecyclePolicy validates a configured policy name, defaulting to
// direct when empty.
func ParseLifecyclePolicy(s string) (LifecyclePolicy, error) {
	switch LifecyclePolicy(s) {
	case "":
		return PolicyDirect, nil
	case PolicyDirect, PolicyApproval:
		return LifecyclePolicy(s), nil
	}
	return "", fmt.Errorf("unknown lifecycle policy %q", s)
}

// AssignSource returns the status an order must be in for a courier to
// assign themselves under this policy.
func (p LifecyclePolicy) AssignSource() string {
	if p == PolicyApproval {
		return OrderApproved
	}
	return OrderPending
}

// Order is a delivery request created by a business on behalf of a customer.
// Mutated only through the transition handlers; never deleted.
type Order struct {
	gorm.Model
	TrackingCode string `json:"tracking_code" gorm:"uniqueIndex"`

	CustomerID uint  `json:"customer_id" gorm:"index"`
	BusinessID uint  `json:"business_id" gorm:"index"`
	CourierID  *uint `json:"courier_id" gorm:"index"`

	PickupAddress   string `json:"pickup_address"`
	PickupPhone     string `json:"pickup_phone"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryPhone   string `json:"delivery_phone"`

	PackageDesc   string   `json:"package_desc"`
	Instructions  string   `json:"instructions,omitempty"`
	WeightKG      *float64 `json:"weight_kg,omitempty"`
	DeclaredValue *float64 `json:"declared_value,omitempty"`

	DeliveryFee    float64 `json:"delivery_fee"`
	CommissionRate float64 `json:"commission_rate"`

	Status      string     `json:"status" gorm:"index;default:pending"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy string     `json:"cancelled_by,omitempty"`
}

// Commission is what the platform retains from this order. The rate is
// snapshotted at creation; the product is always computed on read, never
// stored pre-multiplied.
func (o *Order) Commission() float64 {
	return o.DeliveryFee * o.CommissionRate
}

// IsTerminal reports whether status permits no further transitions.
func IsTerminal(status string) bool {
	return status == OrderDelivered || status == OrderCancelled
}

// courierPath is the sole forward path a courier may walk after assignment.
var courierPath = map[string]string{
	OrderAssigned:  OrderPickedUp,
	OrderPickedUp:  OrderInTransit,
	OrderInTransit: OrderDelivered,
}

// CanCourierAdvance reports whether an assigned courier may move an order
// from one status to the next. Skipping states is not allowed.
func CanCourierAdvance(from, to string) bool {
	return courierPath[from] == to
}

// ComputeDeliveryFee prices an order at creation time. A missing weight
// falls back to defaultWeight.
func ComputeDeliveryFee(weightKG *float64, defaultWeight, baseFee, perKGRate float64) float64 {
	w := defaultWeight
	if weightKG != nil {
		w = *weightKG
	}
	return baseFee + w*perKGRate
}
