package routes

import (
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/geocode"
	"mobil_kargo/internal/notifier"
)

// SetupRouter wires every route group. The hub and geocode client are
// injected here and passed down to the handlers that need them.
func SetupRouter(hub *notifier.Hub, geo *geocode.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger())

	AuthRoutes(r)
	OrderRoutes(r, hub)
	LocationRoutes(r, hub)
	DashboardRoutes(r)
	AdminRoutes(r, hub)
	MapsRoutes(r, geo)
	WebSocketRoutes(r, hub)

	return r
}
