package domain

// RadiusScale bounds the zoom range and the point radius it maps onto.
type RadiusScale struct {
	MinZoom   float64 `json:"min_zoom"`
	MaxZoom   float64 `json:"max_zoom"`
	MinRadius float64 `json:"min_radius"`
	MaxRadius float64 `json:"max_radius"`
}

// DefaultRadiusScale matches the Mapbox zoom range used by the map.
var DefaultRadiusScale = RadiusScale{
	MinZoom:   10,
	MaxZoom:   20,
	MinRadius: 0.003,
	MaxRadius: 0.05,
}

// PointRadius linearly maps zoom onto a point radius: MinZoom yields MaxRadius
// and MaxZoom yields MinRadius. Zoom outside the range extrapolates. A
// zero-width zoom range returns MinRadius.
func PointRadius(zoom float64, s RadiusScale) float64 {
	if s.MaxZoom == s.MinZoom {
		return s.MinRadius
	}
	return (s.MaxZoom-zoom)*(s.MaxRadius-s.MinRadius)/(s.MaxZoom-s.MinZoom) + s.MinRadius
}
