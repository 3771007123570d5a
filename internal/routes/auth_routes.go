package routes

import (
	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/controllers"
	"mobil_kargo/internal/middleware"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.GET("/me", middleware.RequireAuth(), controllers.Me)
	}
}
