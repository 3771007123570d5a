// Package geocode proxies the external mapping provider. Provider failures
// are never propagated to callers: lookups degrade to a deterministic mock
// result instead of blocking or failing the request.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Result is a resolved address. Source is "provider" for live lookups and
// "fallback" when the provider was unavailable and the mock answered.
type Result struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
	Source      string  `json:"source"`
}

// Client calls a Nominatim-style search endpoint with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a geocoding client. The timeout bounds every lookup.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type providerHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves an address to coordinates. It never returns an error:
// when the provider times out, errors, or finds nothing, the deterministic
// fallback result is returned instead.
func (c *Client) Geocode(ctx context.Context, address string) Result {
	res, err := c.lookup(ctx, address)
	if err != nil {
		logrus.WithError(err).WithField("address", address).
			Warn("geocode provider unavailable, serving fallback")
		return Fallback(address)
	}
	return res
}

func (c *Client) lookup(ctx context.Context, address string) (Result, error) {
	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", "mobil-kargo/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var hits []providerHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return Result{}, err
	}
	if len(hits) == 0 {
		return Result{}, fmt.Errorf("no results for %q", address)
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return Result{}, err
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return Result{}, err
	}
	return Result{Latitude: lat, Longitude: lon, DisplayName: hits[0].DisplayName, Source: "provider"}, nil
}

// Fallback derives a stable mock coordinate from the address so repeated
// degraded lookups of the same address agree with each other. Coordinates
// land inside the greater Istanbul box.
func Fallback(address string) Result {
	h := fnv.New32a()
	h.Write([]byte(address))
	n := h.Sum32()
	lat := 40.8 + float64(n%4000)/10000.0      // 40.8 .. 41.2
	lon := 28.6 + float64(n/4000%8000)/10000.0 // 28.6 .. 29.4
	return Result{Latitude: lat, Longitude: lon, DisplayName: address, Source: "fallback"}
}
