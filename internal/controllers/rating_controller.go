package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mobil_kargo/internal/apperr"
	"mobil_kargo/internal/config"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
)

type rateInput struct {
	Score   int    `json:"score" binding:"required"`
	Comment string `json:"comment"`
}

// RateOrder records post-delivery feedback. The customer rates the courier
// and the courier rates the customer; each side rates an order at most once.
func RateOrder(c *gin.Context) {
	order, ok := fetchOrder(c)
	if !ok {
		return
	}

	var input rateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Score < models.MinRatingScore || input.Score > models.MaxRatingScore {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 1 and 5"})
		return
	}

	if order.Status != models.OrderDelivered {
		abortWith(c, fmt.Errorf("%w: only delivered orders can be rated", apperr.ErrInvalidState))
		return
	}

	// The rated party is always the rater's counterpart on this order.
	raterID := middleware.ActorID(c)
	var ratedID uint
	switch {
	case raterID == order.CustomerID && order.CourierID != nil:
		ratedID = *order.CourierID
	case order.CourierID != nil && raterID == *order.CourierID:
		ratedID = order.CustomerID
	default:
		abortWith(c, fmt.Errorf("%w: only the order's customer or courier may rate it", apperr.ErrPermissionDenied))
		return
	}

	var existing int64
	config.DB.Model(&models.Rating{}).
		Where("order_id = ? AND rater_id = ?", order.ID, raterID).Count(&existing)
	if existing > 0 {
		abortWith(c, fmt.Errorf("%w: you already rated this order", apperr.ErrInvalidState))
		return
	}

	rating := models.Rating{
		OrderID: order.ID,
		RaterID: raterID,
		RatedID: ratedID,
		Score:   input.Score,
		Comment: input.Comment,
	}
	if err := config.DB.Create(&rating).Error; err != nil {
		// The composite unique index backs up the pre-check under races.
		if isUniqueViolation(err) {
			abortWith(c, fmt.Errorf("%w: you already rated this order", apperr.ErrInvalidState))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record rating: " + err.Error()})
		return
	}

	if err := RecomputeUserRating(ratedID); err != nil {
		logrus.WithError(err).WithField("user_id", ratedID).
			Error("could not recompute rating average")
	}

	c.JSON(http.StatusCreated, gin.H{"message": "rating recorded", "rating": rating})
}

// RecomputeUserRating persists the arithmetic mean of all ratings the user
// has received, rounded to one decimal.
func RecomputeUserRating(userID uint) error {
	var avg float64
	err := config.DB.Model(&models.Rating{}).
		Where("rated_id = ?", userID).
		Select("COALESCE(AVG(score), 5.0)").
		Scan(&avg).Error
	if err != nil {
		return err
	}
	return config.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("rating", models.RoundRating(avg)).Error
}

type tipInput struct {
	// Amount carries no required binding: zero is a legal tip and gin's
	// required tag rejects zero values as missing.
	Amount float64 `json:"amount"`
	Type   string  `json:"type" binding:"required"`
	Note   string  `json:"note"`
}

// validTipAmount reports whether amount lies in the accepted 0..1000 range,
// both ends inclusive.
func validTipAmount(amount float64) bool {
	return amount >= 0 && amount <= models.MaxTipAmount
}

// TipOrder records a tip from the order's customer to its courier. Tips
// never change order state.
func TipOrder(c *gin.Context) {
	order, ok := fetchOrder(c)
	if !ok {
		return
	}

	if order.CustomerID != middleware.ActorID(c) {
		abortWith(c, fmt.Errorf("%w: not your order", apperr.ErrPermissionDenied))
		return
	}
	if order.CourierID == nil {
		abortWith(c, fmt.Errorf("%w: order has no courier to tip", apperr.ErrInvalidState))
		return
	}

	var input tipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validTipAmount(input.Amount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tip amount must be between 0 and 1000"})
		return
	}
	if input.Type != models.TipOnline && input.Type != models.TipCash {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tip type must be online or cash"})
		return
	}

	tip := models.Tip{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		CourierID:  *order.CourierID,
		Amount:     input.Amount,
		Type:       input.Type,
		Note:       input.Note,
	}
	if err := config.DB.Create(&tip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record tip: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "tip recorded", "tip": tip})
}
