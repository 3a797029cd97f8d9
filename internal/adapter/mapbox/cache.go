package mapbox

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
	"github.com/couchcryptid/envmon-service/internal/observability"
	gocache "github.com/patrickmn/go-cache"
)

// CachedGeocoder wraps a Geocoder with an in-memory TTL cache. Stations do
// not move, so only the expiry bounds staleness.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *gocache.Cache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder. Entries
// expire after ttl; expired entries are purged every 2*ttl.
func NewCachedGeocoder(inner domain.Geocoder, ttl time.Duration, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, place, county string) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("fwd:%s|%s", place, county)
	return c.lookup(key, "forward", func() (domain.GeocodingResult, error) {
		return c.inner.ForwardGeocode(ctx, place, county)
	})
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", lat, lng)
	return c.lookup(key, "reverse", func() (domain.GeocodingResult, error) {
		return c.inner.ReverseGeocode(ctx, lat, lng)
	})
}

func (c *CachedGeocoder) lookup(key, method string, fetch func() (domain.GeocodingResult, error)) (domain.GeocodingResult, error) {
	if v, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(method, "hit").Inc()
		return v.(domain.GeocodingResult), nil
	}
	c.metrics.GeocodeCache.WithLabelValues(method, "miss").Inc()

	result, err := fetch()
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so "not found" responses can be retried.
	if result.FormattedAddress != "" {
		c.cache.SetDefault(key, result)
	}
	return result, nil
}

// Len reports the number of cached entries, expired ones included until purged.
func (c *CachedGeocoder) Len() int {
	return c.cache.ItemCount()
}
