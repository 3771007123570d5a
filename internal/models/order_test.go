package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobil_kargo/internal/models"
)

func TestParseLifecyclePolicy(t *testing.T) {
	t.Run("defaults to direct when empty", func(t *testing.T) {
		p, err := models.ParseLifecyclePolicy("")
		require.NoError(t, err)
		assert.Equal(t, models.PolicyDirect, p)
	})

	t.Run("accepts both variants", func(t *testing.T) {
		for _, name := range []string{"direct", "approval"} {
			p, err := models.ParseLifecyclePolicy(name)
			require.NoError(t, err)
			assert.Equal(t, models.LifecyclePolicy(name), p)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := models.ParseLifecyclePolicy("freeform")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "freeform")
	})
}

func TestAssignSource(t *testing.T) {
	assert.Equal(t, models.OrderPending, models.PolicyDirect.AssignSource())
	assert.Equal(t, models.OrderApproved, models.PolicyApproval.AssignSource())
}

func TestCanCourierAdvance(t *testing.T) {
	t.Run("allows the forward path", func(t *testing.T) {
		assert.True(t, models.CanCourierAdvance(models.OrderAssigned, models.OrderPickedUp))
		assert.True(t, models.CanCourierAdvance(models.OrderPickedUp, models.OrderInTransit))
		assert.True(t, models.CanCourierAdvance(models.OrderInTransit, models.OrderDelivered))
	})

	t.Run("rejects skipping states", func(t *testing.T) {
		assert.False(t, models.CanCourierAdvance(models.OrderAssigned, models.OrderInTransit))
		assert.False(t, models.CanCourierAdvance(models.OrderAssigned, models.OrderDelivered))
		assert.False(t, models.CanCourierAdvance(models.OrderPickedUp, models.OrderDelivered))
	})

	t.Run("rejects moving backwards or out of terminal states", func(t *testing.T) {
		assert.False(t, models.CanCourierAdvance(models.OrderInTransit, models.OrderPickedUp))
		assert.False(t, models.CanCourierAdvance(models.OrderDelivered, models.OrderInTransit))
		assert.False(t, models.CanCourierAdvance(models.OrderCancelled, models.OrderPickedUp))
	})

	t.Run("rejects transitions from pre-assignment states", func(t *testing.T) {
		assert.False(t, models.CanCourierAdvance(models.OrderPending, models.OrderPickedUp))
		assert.False(t, models.CanCourierAdvance(models.OrderApproved, models.OrderPickedUp))
	})
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, models.IsTerminal(models.OrderDelivered))
	assert.True(t, models.IsTerminal(models.OrderCancelled))
	assert.False(t, models.IsTerminal(models.OrderPending))
	assert.False(t, models.IsTerminal(models.OrderAssigned))
	assert.False(t, models.IsTerminal(models.OrderInTransit))
}

func TestComputeDeliveryFee(t *testing.T) {
	t.Run("uses the declared weight", func(t *testing.T) {
		weight := 2.5
		fee := models.ComputeDeliveryFee(&weight, 1.0, 25.0, 2.0)
		assert.InDelta(t, 30.0, fee, 1e-9)
	})

	t.Run("falls back to the default weight", func(t *testing.T) {
		fee := models.ComputeDeliveryFee(nil, 1.0, 25.0, 2.0)
		assert.InDelta(t, 27.0, fee, 1e-9)
	})
}

func TestCommission(t *testing.T) {
	o := models.Order{DeliveryFee: 30.0, CommissionRate: 0.15}
	assert.InDelta(t, 4.5, o.Commission(), 1e-9)
}
