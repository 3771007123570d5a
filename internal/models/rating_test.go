package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mobil_kargo/internal/models"
)

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.3, models.RoundRating(4.333333))
	assert.Equal(t, 4.7, models.RoundRating(4.666666))
	assert.Equal(t, 5.0, models.RoundRating(5.0))
	assert.Equal(t, 3.5, models.RoundRating(3.45)) // halves round up
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{"courier", "business", "customer", "admin", "moderator"} {
		assert.True(t, models.ValidRole(role), role)
	}
	assert.False(t, models.ValidRole("driver"))
	assert.False(t, models.ValidRole(""))
}

func TestValidVehicleType(t *testing.T) {
	for _, vt := range []string{"car", "motorcycle", "electric_motorcycle", "bicycle"} {
		assert.True(t, models.ValidVehicleType(vt), vt)
	}
	assert.False(t, models.ValidVehicleType("truck"))
	assert.False(t, models.ValidVehicleType(""))
}
