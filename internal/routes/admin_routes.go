package routes

import (
	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/controllers"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
	"mobil_kargo/internal/notifier"
)

func AdminRoutes(r *gin.Engine, hub *notifier.Hub) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", controllers.ListUsers)
		admin.POST("/users", controllers.CreateUser)
		admin.GET("/users/:id", controllers.GetUser)
		admin.PUT("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.PUT("/users/:id/toggle-status", controllers.ToggleUserStatus)

		admin.GET("/couriers", controllers.ListCouriers)
		admin.GET("/businesses", controllers.ListBusinesses)

		admin.GET("/orders", controllers.ListAllOrders)
		admin.PUT("/orders/:id/cancel", controllers.AdminCancelOrder(hub))

		admin.GET("/financial-report", controllers.FinancialReport)
	}
}
