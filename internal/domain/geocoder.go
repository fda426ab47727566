package domain

import "context"

// Place describes the address nearest to a coordinate.
type Place struct {
	FormattedAddress string  `json:"formatted_address"`
	PlaceName        string  `json:"place_name"`
	Confidence       float64 `json:"confidence"` // 0.0–1.0 provider relevance
}

// ReverseGeocoder resolves coordinates into place details.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}
