package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mobil_kargo/internal/apperr"
	"mobil_kargo/internal/config"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
	"mobil_kargo/internal/notifier"
)

// abortWith renders a taxonomy error with its mapped status code.
func abortWith(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

type createOrderInput struct {
	CustomerEmail   string   `json:"customer_email" binding:"required,email"`
	PickupAddress   string   `json:"pickup_address" binding:"required"`
	PickupPhone     string   `json:"pickup_phone" binding:"required"`
	DeliveryAddress string   `json:"delivery_address" binding:"required"`
	DeliveryPhone   string   `json:"delivery_phone" binding:"required"`
	PackageDesc     string   `json:"package_desc" binding:"required"`
	Instructions    string   `json:"instructions"`
	WeightKG        *float64 `json:"weight_kg"`
	DeclaredValue   *float64 `json:"declared_value"`
}

// CreateOrder lets a business open a delivery request for one of its
// customers. The delivery fee and commission rate are fixed here and never
// recomputed.
func CreateOrder(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var customer models.User
		err := config.DB.Where("email = ? AND role = ?", input.CustomerEmail, models.RoleCustomer).
			First(&customer).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no customer account with that email"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
			}
			return
		}

		settings := config.App
		order := models.Order{
			TrackingCode:    uuid.NewString(),
			CustomerID:      customer.ID,
			BusinessID:      middleware.ActorID(c),
			PickupAddress:   input.PickupAddress,
			PickupPhone:     input.PickupPhone,
			DeliveryAddress: input.DeliveryAddress,
			DeliveryPhone:   input.DeliveryPhone,
			PackageDesc:     input.PackageDesc,
			Instructions:    input.Instructions,
			WeightKG:        input.WeightKG,
			DeclaredValue:   input.DeclaredValue,
			DeliveryFee:     models.ComputeDeliveryFee(input.WeightKG, settings.DefaultWeightKG, settings.BaseFee, settings.PerKGRate),
			CommissionRate:  settings.CommissionRate,
			Status:          models.OrderPending,
		}

		if err := config.DB.Create(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create order: " + err.Error()})
			return
		}

		// Mutation committed; notification is best-effort and never fails
		// the request.
		hub.SendTo(customer.ID, notifier.Event{
			Type:    notifier.EventNewOrder,
			OrderID: order.ID,
			Message: "A new delivery order was created for you",
			Data:    gin.H{"status": order.Status, "delivery_fee": order.DeliveryFee},
		})

		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// ListOrders returns the orders visible to the calling actor, newest first.
// Couriers additionally see the unassigned pool they may take.
func ListOrders(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := config.DB.Model(&models.Order{})
	where, args := OrderVisibilityFilter(c.GetString("role"), middleware.ActorID(c), config.App.Lifecycle)
	query = query.Where(where, args...)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list orders: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// OrderVisibilityFilter builds the WHERE clause scoping order queries to the
// calling actor. Couriers see their own orders plus the unassigned pool in
// the policy's assignable status; admins see everything.
func OrderVisibilityFilter(role string, actorID uint, policy models.LifecyclePolicy) (string, []interface{}) {
	switch role {
	case models.RoleCourier:
		return "courier_id = ? OR (status = ? AND courier_id IS NULL)",
			[]interface{}{actorID, policy.AssignSource()}
	case models.RoleBusiness:
		return "business_id = ?", []interface{}{actorID}
	case models.RoleCustomer:
		return "customer_id = ?", []interface{}{actorID}
	default: // admin, moderator
		return "1 = 1", nil
	}
}

// GetOrder returns one order if the caller participates in it.
func GetOrder(c *gin.Context) {
	order, ok := fetchOrder(c)
	if !ok {
		return
	}

	actorID := middleware.ActorID(c)
	role := c.GetString("role")
	participant := order.CustomerID == actorID || order.BusinessID == actorID ||
		(order.CourierID != nil && *order.CourierID == actorID)
	if !participant && role != models.RoleAdmin && role != models.RoleModerator {
		abortWith(c, fmt.Errorf("%w: not your order", apperr.ErrPermissionDenied))
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ApproveOrder lets the order's customer approve a pending order. Only
// meaningful under the approval lifecycle; harmless but available under the
// direct one.
func ApproveOrder(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := fetchOrder(c)
		if !ok {
			return
		}
		if order.CustomerID != middleware.ActorID(c) {
			abortWith(c, fmt.Errorf("%w: not your order", apperr.ErrPermissionDenied))
			return
		}

		res := config.DB.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderPending).
			Update("status", models.OrderApproved)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not approve order: " + res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			abortWith(c, fmt.Errorf("%w: order is not pending", apperr.ErrInvalidState))
			return
		}

		hub.SendTo(order.BusinessID, notifier.Event{
			Type:    notifier.EventOrderApproved,
			OrderID: order.ID,
			Message: "The customer approved the order",
			Data:    gin.H{"status": models.OrderApproved},
		})
		c.JSON(http.StatusOK, gin.H{"message": "order approved"})
	}
}

// RejectOrder lets the order's customer reject a still-pending order.
func RejectOrder(hub *notifier.Hub) gin.HandlerFunc {
	return customerCancel(hub, true)
}

// CancelOrder lets the order's customer cancel any non-terminal order.
func CancelOrder(hub *notifier.Hub) gin.HandlerFunc {
	return customerCancel(hub, false)
}

func customerCancel(hub *notifier.Hub, pendingOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := fetchOrder(c)
		if !ok {
			return
		}
		if order.CustomerID != middleware.ActorID(c) {
			abortWith(c, fmt.Errorf("%w: not your order", apperr.ErrPermissionDenied))
			return
		}

		query := config.DB.Model(&models.Order{}).Where("id = ?", order.ID)
		if pendingOnly {
			query = query.Where("status = ?", models.OrderPending)
		} else {
			query = query.Where("status NOT IN ?", []string{models.OrderDelivered, models.OrderCancelled})
		}
		now := time.Now().UTC()
		res := query.Updates(map[string]interface{}{
			"status":       models.OrderCancelled,
			"cancelled_at": now,
			"cancelled_by": models.RoleCustomer,
		})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel order: " + res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			abortWith(c, fmt.Errorf("%w: order can no longer be cancelled", apperr.ErrInvalidState))
			return
		}

		hub.SendTo(order.BusinessID, notifier.Event{
			Type:    notifier.EventOrderRejected,
			OrderID: order.ID,
			Message: "The customer cancelled the order",
			Data:    gin.H{"status": models.OrderCancelled},
		})
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
	}
}

// AssignOrder lets a courier take an unassigned order. The compare-and-set
// on (status, courier_id IS NULL) makes a concurrent second assignment fail
// its guard instead of overwriting the first.
func AssignOrder(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := fetchOrder(c)
		if !ok {
			return
		}

		courierID := middleware.ActorID(c)
		now := time.Now().UTC()
		res := config.DB.Model(&models.Order{}).
			Where("id = ? AND status = ? AND courier_id IS NULL", order.ID, config.App.Lifecycle.AssignSource()).
			Updates(map[string]interface{}{
				"status":      models.OrderAssigned,
				"courier_id":  courierID,
				"assigned_at": now,
			})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not assign order: " + res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			abortWith(c, fmt.Errorf("%w: order is already taken or not assignable", apperr.ErrInvalidState))
			return
		}

		logrus.WithFields(logrus.Fields{"order_id": order.ID, "courier_id": courierID}).
			Info("order assigned")

		ev := notifier.Event{
			Type:      notifier.EventOrderAssigned,
			OrderID:   order.ID,
			CourierID: courierID,
			Message:   "A courier took the order",
			Data:      gin.H{"status": models.OrderAssigned},
		}
		hub.SendToAll([]uint{order.CustomerID, order.BusinessID}, ev)
		c.JSON(http.StatusOK, gin.H{"message": "order assigned"})
	}
}

type statusUpdateInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus advances an order along the courier path
// assigned -> picked_up -> in_transit -> delivered. Only the assigned
// courier may call it; the compare-and-set on the current status rejects
// stale transitions that arrive after a later one committed.
func UpdateOrderStatus(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := fetchOrder(c)
		if !ok {
			return
		}

		courierID := middleware.ActorID(c)
		if order.CourierID == nil || *order.CourierID != courierID {
			abortWith(c, fmt.Errorf("%w: order is not assigned to you", apperr.ErrPermissionDenied))
			return
		}

		var input statusUpdateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !models.CanCourierAdvance(order.Status, input.Status) {
			abortWith(c, fmt.Errorf("%w: cannot move order from %s to %s", apperr.ErrInvalidState, order.Status, input.Status))
			return
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": input.Status}
		switch input.Status {
		case models.OrderPickedUp:
			updates["picked_up_at"] = now
		case models.OrderDelivered:
			updates["delivered_at"] = now
		}

		res := config.DB.Model(&models.Order{}).
			Where("id = ? AND status = ? AND courier_id = ?", order.ID, order.Status, courierID).
			Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status: " + res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			abortWith(c, fmt.Errorf("%w: order status changed concurrently", apperr.ErrInvalidState))
			return
		}

		if input.Status == models.OrderDelivered {
			err := config.DB.Model(&models.User{}).Where("id = ?", courierID).
				UpdateColumn("completed_orders", gorm.Expr("completed_orders + 1")).Error
			if err != nil {
				logrus.WithError(err).WithField("courier_id", courierID).
					Error("could not increment completed order count")
			}
		}

		ev := notifier.Event{
			Type:      notifier.EventStatusUpdate,
			OrderID:   order.ID,
			CourierID: courierID,
			Message:   "Order status changed to " + input.Status,
			Data:      gin.H{"status": input.Status},
		}
		hub.SendToAll([]uint{order.CustomerID, order.BusinessID}, ev)
		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}

// fetchOrder loads the order from the :id route parameter, writing the error
// response itself when the id is malformed or unknown.
func fetchOrder(c *gin.Context) (*models.Order, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return nil, false
	}

	var order models.Order
	if err := config.DB.First(&order, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortWith(c, fmt.Errorf("%w: order not found", apperr.ErrNotFound))
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return nil, false
	}
	return &order, true
}
