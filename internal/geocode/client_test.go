package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobil_kargo/internal/geocode"
)

func TestGeocodeProviderResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Kadikoy, Istanbul", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"40.9903","lon":"29.0205","display_name":"Kadıköy, İstanbul"}]`))
	}))
	defer srv.Close()

	client := geocode.NewClient(srv.URL, 2*time.Second)
	res := client.Geocode(context.Background(), "Kadikoy, Istanbul")

	assert.Equal(t, "provider", res.Source)
	assert.InDelta(t, 40.9903, res.Latitude, 1e-9)
	assert.InDelta(t, 29.0205, res.Longitude, 1e-9)
	assert.Equal(t, "Kadıköy, İstanbul", res.DisplayName)
}

func TestGeocodeDegradesOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := geocode.NewClient(srv.URL, 2*time.Second)
	res := client.Geocode(context.Background(), "Some Address 5")

	assert.Equal(t, "fallback", res.Source)
	assert.Equal(t, geocode.Fallback("Some Address 5"), res)
}

func TestGeocodeDegradesOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := geocode.NewClient(srv.URL, 20*time.Millisecond)

	start := time.Now()
	res := client.Geocode(context.Background(), "Slow Town 1")
	require.Less(t, time.Since(start), 150*time.Millisecond, "lookup must be bounded by the timeout")

	assert.Equal(t, "fallback", res.Source)
}

func TestGeocodeDegradesOnEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := geocode.NewClient(srv.URL, time.Second)
	res := client.Geocode(context.Background(), "Nowhere")
	assert.Equal(t, "fallback", res.Source)
}

func TestFallbackIsDeterministic(t *testing.T) {
	a := geocode.Fallback("Bağdat Caddesi 17")
	b := geocode.Fallback("Bağdat Caddesi 17")
	assert.Equal(t, a, b)

	assert.GreaterOrEqual(t, a.Latitude, 40.8)
	assert.Less(t, a.Latitude, 41.2)
	assert.GreaterOrEqual(t, a.Longitude, 28.6)
	assert.Less(t, a.Longitude, 29.4)
	assert.Equal(t, "fallback", a.Source)
}
