package models

import (
	"encoding/json"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gorm.io/gorm"
)

// LocationSample is one point of a courier's position stream. Samples are
// append-only; the courier's current location is the sample with the
// greatest timestamp.
type LocationSample struct {
	gorm.Model
	CourierID uint      `json:"courier_id" gorm:"index"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

// GeoJSON renders the sample as a GeoJSON Point (lon, lat order) for map
// clients.
func (s *LocationSample) GeoJSON() (json.RawMessage, error) {
	p := geom.NewPointFlat(geom.XY, []float64{s.Longitude, s.Latitude})
	return geojson.Marshal(p)
}
