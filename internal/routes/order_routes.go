package routes

import (
	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/controllers"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
	"mobil_kargo/internal/notifier"
)

func OrderRoutes(r *gin.Engine, hub *notifier.Hub) {
	orders := r.Group("/orders")
	orders.Use(middleware.RequireAuth())
	{
		orders.POST("", middleware.RequireRole(models.RoleBusiness), controllers.CreateOrder(hub))
		orders.GET("", controllers.ListOrders)
		orders.GET("/:id", controllers.GetOrder)

		orders.PUT("/:id/approve", middleware.RequireRole(models.RoleCustomer), controllers.ApproveOrder(hub))
		orders.PUT("/:id/reject", middleware.RequireRole(models.RoleCustomer), controllers.RejectOrder(hub))
		orders.PUT("/:id/cancel", middleware.RequireRole(models.RoleCustomer), controllers.CancelOrder(hub))
		orders.PUT("/:id/assign", middleware.RequireRole(models.RoleCourier), controllers.AssignOrder(hub))
		orders.PUT("/:id/status", middleware.RequireRole(models.RoleCourier), controllers.UpdateOrderStatus(hub))

		orders.POST("/:id/rate", controllers.RateOrder)
		orders.POST("/:id/tip", middleware.RequireRole(models.RoleCustomer), controllers.TipOrder)
	}
}
