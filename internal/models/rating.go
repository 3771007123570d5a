package models

import (
	"math"

	"gorm.io/gorm"
)

// Tip payment types.
const (
	TipOnline = "online"
	TipCash   = "cash"
)

// Bounds for feedback input.
const (
	MinRatingScore = 1
	MaxRatingScore = 5
	MaxTipAmount   = 1000.0
)

// Rating is post-delivery feedback from the order's customer about its
// courier, or vice versa. At most one rating per (order, rater) pair.
type Rating struct {
	gorm.Model
	OrderID uint   `json:"order_id" gorm:"uniqueIndex:idx_order_rater"`
	RaterID uint   `json:"rater_id" gorm:"uniqueIndex:idx_order_rater"`
	RatedID uint   `json:"rated_id" gorm:"index"`
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}

// Tip records an extra payment from a customer to a courier. It never
// alters order state.
type Tip struct {
	gorm.Model
	OrderID    uint    `json:"order_id" gorm:"index"`
	CustomerID uint    `json:"customer_id"`
	CourierID  uint    `json:"courier_id" gorm:"index"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	Note       string  `json:"note,omitempty"`
}

// RoundRating rounds an average score to one decimal, the precision
// persisted on the rated actor.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
