package geoindex

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
)

func testPoints() []domain.GeoPoint {
	return domain.ToGeoPoints([]domain.Incident{
		{RowID: "mission", Latitude: 37.7599, Longitude: -122.4148},
		{RowID: "soma", Latitude: 37.7785, Longitude: -122.4056},
		{RowID: "sunset", Latitude: 37.7530, Longitude: -122.4940},
		{RowID: "marina", Latitude: 37.8037, Longitude: -122.4368},
	})
}

func rowIDs(points []domain.GeoPoint) []string {
	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.Incident.RowID
	}
	return ids
}

func TestIndex_Within(t *testing.T) {
	ix := New(testPoints())
	require.Equal(t, 4, ix.Len())

	// Eastern half of the city.
	got := ix.Within(orb.Bound{Min: orb.Point{-122.43, 37.70}, Max: orb.Point{-122.38, 37.80}})
	assert.Equal(t, []string{"mission", "soma"}, rowIDs(got))
}

func TestIndex_WithinWholeCity(t *testing.T) {
	ix := New(testPoints())
	got := ix.Within(domain.DefaultViewConstraints.Bounds)
	assert.Equal(t, []string{"mission", "soma", "sunset", "marina"}, rowIDs(got))
}

func TestIndex_WithinNothing(t *testing.T) {
	ix := New(testPoints())
	got := ix.Within(orb.Bound{Min: orb.Point{-121.0, 36.0}, Max: orb.Point{-120.0, 37.0}})
	assert.Empty(t, got)
}

func TestIndex_InvertedBound(t *testing.T) {
	ix := New(testPoints())
	got := ix.Within(orb.Bound{Min: orb.Point{-122.38, 37.80}, Max: orb.Point{-122.43, 37.70}})
	assert.Empty(t, got)
}

func TestIndex_Empty(t *testing.T) {
	ix := New(nil)
	assert.Zero(t, ix.Len())
	assert.Empty(t, ix.Within(domain.DefaultViewConstraints.Bounds))
}

func TestIndex_DuplicateCoordinates(t *testing.T) {
	points := domain.ToGeoPoints([]domain.Incident{
		{RowID: "a", Latitude: 37.77, Longitude: -122.42},
		{RowID: "b", Latitude: 37.77, Longitude: -122.42},
	})
	ix := New(points)
	got := ix.Within(orb.Bound{Min: orb.Point{-122.42, 37.77}, Max: orb.Point{-122.42, 37.77}})
	assert.Equal(t, []string{"a", "b"}, rowIDs(got))
}
