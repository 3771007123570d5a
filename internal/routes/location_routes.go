package routes

import (
	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/controllers"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
	"mobil_kargo/internal/notifier"
)

func LocationRoutes(r *gin.Engine, hub *notifier.Hub) {
	loc := r.Group("/location")
	loc.Use(middleware.RequireAuth())
	{
		loc.POST("", middleware.RequireRole(models.RoleCourier), controllers.UpdateLocation(hub))
		loc.GET("/:courierId", controllers.GetCourierLocation)
	}
}

func DashboardRoutes(r *gin.Engine) {
	r.GET("/dashboard/stats", middleware.RequireAuth(), controllers.DashboardStats)
}
