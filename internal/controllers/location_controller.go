package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mobil_kargo/internal/config"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
	"mobil_kargo/internal/notifier"
)

type locationInput struct {
	Latitude  *float64   `json:"latitude" binding:"required"`
	Longitude *float64   `json:"longitude" binding:"required"`
	Accuracy  *float64   `json:"accuracy"`
	Timestamp *time.Time `json:"timestamp"`
}

// UpdateLocation appends a position sample for the calling courier and
// pushes it to the customers of the courier's active orders.
func UpdateLocation(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input locationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sample, err := recordLocation(hub, middleware.ActorID(c), input)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record location: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "location recorded", "sample_id": sample.ID})
	}
}

// recordLocation persists the sample and broadcasts it. Shared by the REST
// handler and inbound websocket location frames.
func recordLocation(hub *notifier.Hub, courierID uint, input locationInput) (*models.LocationSample, error) {
	ts := time.Now().UTC()
	if input.Timestamp != nil {
		ts = input.Timestamp.UTC()
	}
	sample := models.LocationSample{
		CourierID: courierID,
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
		Accuracy:  input.Accuracy,
		Timestamp: ts,
	}
	if err := config.DB.Create(&sample).Error; err != nil {
		return nil, err
	}

	data := gin.H{
		"latitude":  sample.Latitude,
		"longitude": sample.Longitude,
		"timestamp": sample.Timestamp.Format(time.RFC3339Nano),
	}
	if sample.Accuracy != nil {
		data["accuracy"] = *sample.Accuracy
	}
	if point, err := sample.GeoJSON(); err == nil {
		data["point"] = point
	} else {
		logrus.WithError(err).Warn("could not encode location sample as GeoJSON")
	}

	hub.BroadcastLocation(config.DB, courierID, notifier.Event{
		Type:      notifier.EventLocation,
		CourierID: courierID,
		Message:   "Courier location updated",
		Data:      data,
	})
	return &sample, nil
}

// GetCourierLocation returns the courier's most recent position sample.
func GetCourierLocation(c *gin.Context) {
	courierID, err := strconv.ParseUint(c.Param("courierId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid courier id"})
		return
	}

	var sample models.LocationSample
	err = config.DB.Where("courier_id = ?", uint(courierID)).
		Order("timestamp DESC").First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no location recorded for this courier"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	resp := gin.H{"location": sample}
	if point, err := sample.GeoJSON(); err == nil {
		resp["point"] = point
	}
	c.JSON(http.StatusOK, resp)
}
