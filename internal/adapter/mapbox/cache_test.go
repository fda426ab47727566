package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/observability"
)

type countingGeocoder struct {
	calls int
	place domain.Place
	err   error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.Place, error) {
	m.calls++
	return m.place, m.err
}

func newTestCache(t *testing.T, inner domain.ReverseGeocoder, size int) *CachedGeocoder {
	t.Helper()
	cached, err := NewCachedGeocoder(inner, size, observability.NewMetricsForTesting())
	require.NoError(t, err)
	return cached
}

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{place: domain.Place{FormattedAddress: "Mission St, San Francisco", PlaceName: "Mission St"}}
	cached := newTestCache(t, inner, 10)

	p1, err := cached.ReverseGeocode(context.Background(), 37.7599, -122.4148)
	require.NoError(t, err)
	p2, err := cached.ReverseGeocode(context.Background(), 37.7599, -122.4148)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(cached.metrics.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cached.metrics.GeocodeCache.WithLabelValues("miss")))
}

func TestCachedGeocoder_RoundsKey(t *testing.T) {
	inner := &countingGeocoder{place: domain.Place{FormattedAddress: "Castro St"}}
	cached := newTestCache(t, inner, 10)

	_, _ = cached.ReverseGeocode(context.Background(), 37.7609001, -122.4350001)
	_, _ = cached.ReverseGeocode(context.Background(), 37.7609002, -122.4350002)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_EmptyNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := newTestCache(t, inner, 10)

	_, _ = cached.ReverseGeocode(context.Background(), 37.7, -122.4)
	_, _ = cached.ReverseGeocode(context.Background(), 37.7, -122.4)
	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, cached.Len())
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := newTestCache(t, inner, 10)

	_, err := cached.ReverseGeocode(context.Background(), 37.7, -122.4)
	require.Error(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 37.7, -122.4)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_Eviction(t *testing.T) {
	inner := &countingGeocoder{place: domain.Place{FormattedAddress: "somewhere"}}
	cached := newTestCache(t, inner, 2)

	ctx := context.Background()
	_, _ = cached.ReverseGeocode(ctx, 37.1, -122.1)
	_, _ = cached.ReverseGeocode(ctx, 37.2, -122.2)
	_, _ = cached.ReverseGeocode(ctx, 37.3, -122.3) // evicts 37.1
	assert.Equal(t, 2, cached.Len())

	_, _ = cached.ReverseGeocode(ctx, 37.1, -122.1)
	assert.Equal(t, 4, inner.calls)
}

func TestNewCachedGeocoder_InvalidSize(t *testing.T) {
	_, err := NewCachedGeocoder(&countingGeocoder{}, 0, observability.NewMetricsForTesting())
	require.Error(t, err)
}
