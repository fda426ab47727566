package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoPoint wraps an incident with its point geometry.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
	Incident    Incident   `json:"-"`
}

// NewGeoPoint builds the point for one incident.
func NewGeoPoint(inc Incident) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: [2]float64{inc.Longitude, inc.Latitude},
		Incident:    inc,
	}
}

// ToGeoPoints maps incidents 1:1 to points, preserving order.
func ToGeoPoints(incidents []Incident) []GeoPoint {
	out := make([]GeoPoint, len(incidents))
	for i, inc := range incidents {
		out[i] = NewGeoPoint(inc)
	}
	return out
}

// Point returns the orb geometry.
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Coordinates[0], p.Coordinates[1]}
}

// Feature renders the point as a GeoJSON feature carrying the incident
// fields and its category color.
func (p GeoPoint) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.Point())
	f.ID = p.Incident.RowID
	f.Properties = geojson.Properties(p.Incident.Properties())
	f.Properties["color"] = ColorFor(p.Incident.Category)
	return f
}

// ToFeatureCollection renders points as a GeoJSON FeatureCollection.
func ToFeatureCollection(points []GeoPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(points))
	for _, p := range points {
		fc.Append(p.Feature())
	}
	return fc
}
