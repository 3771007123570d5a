package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mobil_kargo/internal/apperr"
	"mobil_kargo/internal/config"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
	"mobil_kargo/internal/notifier"
)

// ListUsers returns all accounts, paginated.
func ListUsers(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	var users []models.User
	if err := config.DB.Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

type adminCreateUserInput struct {
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required"`
	FullName     string `json:"full_name" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
	Phone        string `json:"phone"`
	Role         string `json:"role" binding:"required"`
	VehicleType  string `json:"vehicle_type"`
	BusinessName string `json:"business_name"`
}

// CreateUser provisions an account of any role, including admin and
// moderator.
func CreateUser(c *gin.Context) {
	var input adminCreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if input.Role == models.RoleCourier && !models.ValidVehicleType(input.VehicleType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid vehicle_type is required for courier accounts"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		Email:        input.Email,
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Role:         input.Role,
		Status:       models.StatusActive,
		VehicleType:  input.VehicleType,
		BusinessName: input.BusinessName,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email or username already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetUser returns one account.
func GetUser(c *gin.Context) {
	user, ok := fetchUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type adminUpdateUserInput struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

// UpdateUser applies a partial profile update to any account.
func UpdateUser(c *gin.Context) {
	user, ok := fetchUser(c)
	if !ok {
		return
	}

	var input adminUpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Username != nil {
		updates["username"] = *input.Username
	}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		updates["role"] = *input.Role
	}
	if input.Status != nil {
		switch *input.Status {
		case models.StatusActive, models.StatusInactive, models.StatusBanned:
			updates["status"] = *input.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}

	if len(updates) > 0 {
		if err := config.DB.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user: " + err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes an account. Deleting your own account is rejected.
func DeleteUser(c *gin.Context) {
	user, ok := fetchUser(c)
	if !ok {
		return
	}

	if user.ID == middleware.ActorID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	if err := config.DB.Delete(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// ToggleUserStatus flips an account between active and inactive.
func ToggleUserStatus(c *gin.Context) {
	user, ok := fetchUser(c)
	if !ok {
		return
	}

	newStatus := models.StatusInactive
	if user.Status != models.StatusActive {
		newStatus = models.StatusActive
	}
	if err := config.DB.Model(user).Update("status", newStatus).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user is now " + newStatus, "status": newStatus})
}

// ListAllOrders returns every order with participant display names, newest
// first, optionally filtered by status.
func ListAllOrders(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	query := config.DB.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list orders: " + err.Error()})
		return
	}

	enriched := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		row := gin.H{
			"order":         o,
			"customer_name": displayName(o.CustomerID),
			"business_name": displayName(o.BusinessID),
			"courier_name":  "unassigned",
			"commission":    o.Commission(),
		}
		if o.CourierID != nil {
			row["courier_name"] = displayName(*o.CourierID)
		}
		enriched = append(enriched, row)
	}
	c.JSON(http.StatusOK, gin.H{"data": enriched})
}

func displayName(userID uint) string {
	var user models.User
	if err := config.DB.Select("full_name", "business_name").First(&user, userID).Error; err != nil {
		return "unknown"
	}
	if user.BusinessName != "" {
		return user.BusinessName
	}
	return user.FullName
}

// AdminCancelOrder cancels any non-terminal order on behalf of the platform.
func AdminCancelOrder(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := fetchOrder(c)
		if !ok {
			return
		}

		now := time.Now().UTC()
		res := config.DB.Model(&models.Order{}).
			Where("id = ? AND status NOT IN ?", order.ID, []string{models.OrderDelivered, models.OrderCancelled}).
			Updates(map[string]interface{}{
				"status":       models.OrderCancelled,
				"cancelled_at": now,
				"cancelled_by": "admin",
			})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel order: " + res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			abortWith(c, fmt.Errorf("%w: order can no longer be cancelled", apperr.ErrInvalidState))
			return
		}

		targets := []uint{order.CustomerID, order.BusinessID}
		if order.CourierID != nil {
			targets = append(targets, *order.CourierID)
		}
		hub.SendToAll(targets, notifier.Event{
			Type:    notifier.EventOrderRejected,
			OrderID: order.ID,
			Message: "The order was cancelled by the platform",
			Data:    gin.H{"status": models.OrderCancelled, "cancelled_by": "admin"},
		})
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled by admin"})
	}
}

// ListCouriers returns all courier accounts with their delivery counts and
// last known location.
func ListCouriers(c *gin.Context) {
	var couriers []models.User
	err := config.DB.Where("role = ?", models.RoleCourier).
		Order("created_at DESC").Find(&couriers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list couriers: " + err.Error()})
		return
	}

	rows := make([]gin.H, 0, len(couriers))
	for _, courier := range couriers {
		row := gin.H{"courier": courier}
		var last models.LocationSample
		err := config.DB.Where("courier_id = ?", courier.ID).
			Order("timestamp DESC").First(&last).Error
		if err == nil {
			row["last_location"] = last
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ListBusinesses returns all business accounts with their order counts.
func ListBusinesses(c *gin.Context) {
	var businesses []models.User
	err := config.DB.Where("role = ?", models.RoleBusiness).
		Order("created_at DESC").Find(&businesses).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list businesses: " + err.Error()})
		return
	}

	rows := make([]gin.H, 0, len(businesses))
	for _, business := range businesses {
		var orderCount int64
		config.DB.Model(&models.Order{}).Where("business_id = ?", business.ID).Count(&orderCount)
		rows = append(rows, gin.H{"business": business, "order_count": orderCount})
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// FinancialReport groups platform commission over delivered orders by month,
// newest first.
func FinancialReport(c *gin.Context) {
	type monthlyRow struct {
		Year         int     `json:"year"`
		Month        int     `json:"month"`
		TotalRevenue float64 `json:"total_revenue"`
		OrderCount   int64   `json:"order_count"`
	}

	var rows []monthlyRow
	err := config.DB.Model(&models.Order{}).
		Select(`EXTRACT(YEAR FROM delivered_at)::int AS year,
			EXTRACT(MONTH FROM delivered_at)::int AS month,
			SUM(delivery_fee * commission_rate) AS total_revenue,
			COUNT(*) AS order_count`).
		Where("status = ?", models.OrderDelivered).
		Group("1, 2").
		Order("year DESC, month DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build report: " + err.Error()})
		return
	}

	var totalOrders int64
	var totalCommission float64
	for _, r := range rows {
		totalOrders += r.OrderCount
		totalCommission += r.TotalRevenue
	}
	c.JSON(http.StatusOK, gin.H{
		"monthly_revenue":         rows,
		"total_orders_delivered":  totalOrders,
		"total_commission_earned": totalCommission,
	})
}

// fetchUser loads the user from the :id route parameter, writing the error
// response itself on failure.
func fetchUser(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return nil, false
	}

	var user models.User
	if err := config.DB.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return nil, false
	}
	return &user, true
}
