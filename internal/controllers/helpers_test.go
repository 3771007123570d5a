package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobil_kargo/internal/models"
)

func TestOrderVisibilityFilter(t *testing.T) {
	t.Run("courier sees own orders plus the unassigned pool", func(t *testing.T) {
		where, args := OrderVisibilityFilter(models.RoleCourier, 9, models.PolicyDirect)
		assert.Equal(t, "courier_id = ? OR (status = ? AND courier_id IS NULL)", where)
		assert.Equal(t, []interface{}{uint(9), models.OrderPending}, args)
	})

	t.Run("courier pool follows the lifecycle policy", func(t *testing.T) {
		_, args := OrderVisibilityFilter(models.RoleCourier, 9, models.PolicyApproval)
		assert.Equal(t, models.OrderApproved, args[1])
	})

	t.Run("business and customer see only their own", func(t *testing.T) {
		where, args := OrderVisibilityFilter(models.RoleBusiness, 4, models.PolicyDirect)
		assert.Equal(t, "business_id = ?", where)
		assert.Equal(t, []interface{}{uint(4)}, args)

		where, args = OrderVisibilityFilter(models.RoleCustomer, 6, models.PolicyDirect)
		assert.Equal(t, "customer_id = ?", where)
		assert.Equal(t, []interface{}{uint(6)}, args)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		where, args := OrderVisibilityFilter(models.RoleAdmin, 1, models.PolicyDirect)
		assert.Equal(t, "1 = 1", where)
		assert.Nil(t, args)
	})
}

func TestTipInputAcceptsZeroAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/1/tip",
		strings.NewReader(`{"amount":0,"type":"cash"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var input tipInput
	require.NoError(t, c.ShouldBindJSON(&input))
	assert.Zero(t, input.Amount)
	assert.Equal(t, models.TipCash, input.Type)
}

func TestValidTipAmount(t *testing.T) {
	assert.True(t, validTipAmount(0))
	assert.True(t, validTipAmount(1000))
	assert.True(t, validTipAmount(42.5))
	assert.False(t, validTipAmount(-0.01))
	assert.False(t, validTipAmount(1000.01))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert rating: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestParseFrameTimestamp(t *testing.T) {
	t.Run("empty timestamp means now upstream", func(t *testing.T) {
		ts, ok := parseFrameTimestamp("")
		assert.True(t, ok)
		assert.Nil(t, ts)
	})

	t.Run("parses RFC3339 with zone", func(t *testing.T) {
		ts, ok := parseFrameTimestamp("2025-06-02T10:30:00+03:00")
		require.True(t, ok)
		require.NotNil(t, ts)
		assert.Equal(t, 2025, ts.Year())
	})

	t.Run("assumes UTC when the zone is missing", func(t *testing.T) {
		ts, ok := parseFrameTimestamp("2025-06-02T10:30:00.123")
		require.True(t, ok)
		require.NotNil(t, ts)
		assert.Equal(t, time.UTC, ts.Location())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, ok := parseFrameTimestamp("yesterday-ish")
		assert.False(t, ok)
	})
}
