package domain

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// ViewState is the map camera.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Bearing   float64 `json:"bearing"`
	Pitch     float64 `json:"pitch"`
}

// ViewConstraints limits where the camera may go.
type ViewConstraints struct {
	Bounds  orb.Bound `json:"bounds"`
	MinZoom float64   `json:"min_zoom"`
	MaxZoom float64   `json:"max_zoom"`
}

// InitialViewState centers the map on San Francisco.
var InitialViewState = ViewState{
	Latitude:  37.773972,
	Longitude: -122.431297,
	Zoom:      12,
}

// DefaultViewConstraints keeps the camera over the city.
var DefaultViewConstraints = ViewConstraints{
	Bounds: orb.Bound{
		Min: orb.Point{-122.531297, 37.673972},
		Max: orb.Point{-122.331297, 37.873972},
	},
	MinZoom: DefaultRadiusScale.MinZoom,
	MaxZoom: DefaultRadiusScale.MaxZoom,
}

// Clamp pulls the camera center into the bounding box and the zoom into
// [MinZoom, MaxZoom]. Bearing and pitch pass through.
func (c ViewConstraints) Clamp(v ViewState) ViewState {
	rect := r2.Rect{
		X: r1.Interval{Lo: c.Bounds.Min.Lon(), Hi: c.Bounds.Max.Lon()},
		Y: r1.Interval{Lo: c.Bounds.Min.Lat(), Hi: c.Bounds.Max.Lat()},
	}
	p := rect.ClampPoint(r2.Point{X: v.Longitude, Y: v.Latitude})
	v.Longitude = p.X
	v.Latitude = p.Y

	if v.Zoom < c.MinZoom {
		v.Zoom = c.MinZoom
	}
	if c.MaxZoom > c.MinZoom && v.Zoom > c.MaxZoom {
		v.Zoom = c.MaxZoom
	}
	return v
}
