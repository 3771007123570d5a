package routes

import (
	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/controllers"
	"mobil_kargo/internal/geocode"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/notifier"
)

// WebSocketRoutes exposes the live channel. Authentication happens inside
// the handler via the token query parameter, the websocket upgrade cannot
// carry an Authorization header from browser clients.
func WebSocketRoutes(r *gin.Engine, hub *notifier.Hub) {
	ws := r.Group("/ws")
	{
		ws.GET("/live", controllers.HandleLiveWebSocket(hub))
	}
}

func MapsRoutes(r *gin.Engine, geo *geocode.Client) {
	r.GET("/maps/geocode", middleware.RequireAuth(), controllers.GeocodeAddress(geo))
}
