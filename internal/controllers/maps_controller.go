package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mobil_kargo/internal/geocode"
)

// GeocodeAddress proxies the mapping provider. Lookups are bounded by the
// client's timeout and degrade to a mock result instead of failing, so the
// response is always 200 with a source marker.
func GeocodeAddress(client *geocode.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Query("address")
		if address == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": client.Geocode(c.Request.Context(), address)})
	}
}
