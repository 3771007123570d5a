package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobil_kargo/internal/config"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
)

func testSettings(ttl time.Duration) {
	config.App = &config.Settings{JWTSecret: "test-secret", TokenTTL: ttl}
}

func TestTokenRoundtrip(t *testing.T) {
	testSettings(time.Hour)

	token, err := middleware.GenerateToken(41, models.RoleCourier)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := middleware.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(41), claims.UserID)
	assert.Equal(t, models.RoleCourier, claims.Role)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	testSettings(time.Hour)

	_, err := middleware.ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	testSettings(time.Hour)

	token, err := middleware.GenerateToken(1, models.RoleAdmin)
	require.NoError(t, err)

	config.App.JWTSecret = "different-secret"
	_, err = middleware.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	testSettings(-time.Minute)

	token, err := middleware.GenerateToken(1, models.RoleCustomer)
	require.NoError(t, err)

	_, err = middleware.ValidateToken(token)
	require.Error(t, err)
}

// roleGatedRouter mounts a single admin-only endpoint and reports whether
// its handler executed.
func roleGatedRouter(handlerRan *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin-only", middleware.RequireRole(models.RoleAdmin), func(c *gin.Context) {
		*handlerRan = true
		c.JSON(http.StatusOK, gin.H{"data": "restricted"})
	})
	return r
}

func TestRequireRoleBlocksWrongRoleBeforeHandler(t *testing.T) {
	testSettings(time.Hour)

	var handlerRan bool
	r := roleGatedRouter(&handlerRan)

	token, err := middleware.GenerateToken(2, models.RoleCustomer)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, handlerRan, "handler must not run for a wrong-role actor")
	assert.NotContains(t, w.Body.String(), "restricted")
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	testSettings(time.Hour)

	var handlerRan bool
	r := roleGatedRouter(&handlerRan)

	token, err := middleware.GenerateToken(1, models.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerRan)
}

func TestRequireRoleRejectsMissingToken(t *testing.T) {
	testSettings(time.Hour)

	var handlerRan bool
	r := roleGatedRouter(&handlerRan)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerRan)
}
