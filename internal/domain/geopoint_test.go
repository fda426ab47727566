package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeoPoints_LonLatOrder(t *testing.T) {
	points := ToGeoPoints([]Incident{{RowID: "1", Latitude: 37.78, Longitude: -122.41}})
	require.Len(t, points, 1)

	assert.Equal(t, "Point", points[0].Type)
	assert.Equal(t, [2]float64{-122.41, 37.78}, points[0].Coordinates)
	assert.Equal(t, -122.41, points[0].Point().Lon())
	assert.Equal(t, 37.78, points[0].Point().Lat())
}

func TestToFeatureCollection(t *testing.T) {
	points := ToGeoPoints([]Incident{
		{RowID: "a", Category: "Assault", IncidentDate: "2023-05-31T00:00:00.000", Latitude: 37.78, Longitude: -122.41},
		{RowID: "b", Category: "Fraud", Latitude: 37.76, Longitude: -122.43},
	})

	data, err := json.Marshal(ToFeatureCollection(points))
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 2)

	first := decoded.Features[0]
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "Point", first.Geometry.Type)
	if diff := cmp.Diff([]float64{-122.41, 37.78}, first.Geometry.Coordinates); diff != "" {
		t.Fatalf("coordinates mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Assault", first.Properties["incident_category"])
	assert.Equal(t, []any{211.0, 84.0, 0.0, 250.0}, first.Properties["color"])
}

func TestToFeatureCollection_Empty(t *testing.T) {
	data, err := json.Marshal(ToFeatureCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}
