package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mobil_kargo/internal/geocode"
	"mobil_kargo/internal/notifier"
	"mobil_kargo/internal/routes"
)

// An unregistered path falls through to gin's 404; a mounted admin route
// aborts with 401 before touching any handler when no token is present.
func TestAdminRoutesAreMountedAndGated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := routes.SetupRouter(notifier.NewHub(), geocode.NewClient("http://localhost:0", time.Second))

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/users"},
		{http.MethodGet, "/admin/users/1"},
		{http.MethodPut, "/admin/users/1"},
		{http.MethodGet, "/admin/couriers"},
		{http.MethodGet, "/admin/orders"},
		{http.MethodGet, "/admin/financial-report"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
