package controllers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/config"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
)

// DashboardStats returns aggregate counts and earnings appropriate to the
// calling actor's role.
func DashboardStats(c *gin.Context) {
	actorID := middleware.ActorID(c)
	switch c.GetString("role") {
	case models.RoleCourier:
		courierStats(c, actorID)
	case models.RoleBusiness:
		partyStats(c, "business_id", actorID)
	case models.RoleCustomer:
		partyStats(c, "customer_id", actorID)
	default:
		platformStats(c)
	}
}

func countOrders(scopeColumn string, actorID uint, statuses ...string) int64 {
	var n int64
	query := config.DB.Model(&models.Order{})
	if scopeColumn != "" {
		query = query.Where(scopeColumn+" = ?", actorID)
	}
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	query.Count(&n)
	return n
}

// partyStats are the counts one customer or business sees over its own
// orders.
func partyStats(c *gin.Context, scopeColumn string, actorID uint) {
	c.JSON(http.StatusOK, gin.H{
		"total_orders":     countOrders(scopeColumn, actorID),
		"pending_orders":   countOrders(scopeColumn, actorID, models.OrderPending, models.OrderApproved),
		"active_orders":    countOrders(scopeColumn, actorID, models.ActiveStatuses...),
		"delivered_orders": countOrders(scopeColumn, actorID, models.OrderDelivered),
		"cancelled_orders": countOrders(scopeColumn, actorID, models.OrderCancelled),
	})
}

func courierStats(c *gin.Context, courierID uint) {
	var earnings float64
	config.DB.Model(&models.Order{}).
		Where("courier_id = ? AND status = ?", courierID, models.OrderDelivered).
		Select("COALESCE(SUM(delivery_fee * (1 - commission_rate)), 0)").
		Scan(&earnings)

	var tips float64
	config.DB.Model(&models.Tip{}).
		Where("courier_id = ?", courierID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&tips)

	c.JSON(http.StatusOK, gin.H{
		"active_orders":    countOrders("courier_id", courierID, models.ActiveStatuses...),
		"delivered_orders": countOrders("courier_id", courierID, models.OrderDelivered),
		"total_earnings":   earnings,
		"total_tips":       tips,
	})
}

// platformStats is the admin view over the whole system.
func platformStats(c *gin.Context) {
	countUsers := func(role string) int64 {
		var n int64
		config.DB.Model(&models.User{}).Where("role = ?", role).Count(&n)
		return n
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var deliveredToday int64
	config.DB.Model(&models.Order{}).
		Where("status = ? AND delivered_at >= ?", models.OrderDelivered, today).
		Count(&deliveredToday)

	var totalCommission float64
	config.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderDelivered).
		Select("COALESCE(SUM(delivery_fee * commission_rate), 0)").
		Scan(&totalCommission)

	c.JSON(http.StatusOK, gin.H{
		"total_couriers":   countUsers(models.RoleCourier),
		"total_businesses": countUsers(models.RoleBusiness),
		"total_customers":  countUsers(models.RoleCustomer),
		"total_orders":     countOrders("", 0),
		"pending_orders":   countOrders("", 0, models.OrderPending),
		"active_orders":    countOrders("", 0, models.ActiveStatuses...),
		"delivered_today":  deliveredToday,
		"total_commission": math.Round(totalCommission*100) / 100,
		"system_status":    "operational",
	})
}
