package domain

import "fmt"

// MapStyle is a selectable Mapbox basemap.
type MapStyle struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MapStyles are the basemaps offered in the style selector.
var MapStyles = []MapStyle{
	{Label: "Dark", Value: "dark-v11"},
	{Label: "Light", Value: "light-v11"},
	{Label: "Streets", Value: "streets-v12"},
	{Label: "Satellite", Value: "satellite-streets-v12"},
}

// InitialMapStyle is selected when the map first loads.
const InitialMapStyle = "dark-v11"

// StyleURL returns the mapbox:// URL for one of MapStyles.
func StyleURL(value string) (string, error) {
	for _, s := range MapStyles {
		if s.Value == value {
			return "mapbox://styles/mapbox/" + value, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, value)
}
