package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incident(rowID, category string) Incident {
	return Incident{RowID: rowID, Category: category, Latitude: 37.77, Longitude: -122.42}
}

func TestIndexCategories_BucketCompleteness(t *testing.T) {
	incidents := []Incident{
		incident("1", "Assault"),
		incident("2", "Burglary"),
		incident("3", "Assault"),
		incident("4", "assault"),
		incident("5", "Fraud"),
	}

	idx := IndexCategories(incidents)

	total := 0
	for label, members := range idx.Members {
		total += len(members)
		for _, m := range members {
			assert.Equal(t, label, m.Category)
		}
	}
	assert.Equal(t, len(incidents), total)

	for _, inc := range incidents {
		found := 0
		for _, m := range idx.Members[inc.Category] {
			if m.RowID == inc.RowID {
				found++
			}
		}
		assert.Equal(t, 1, found, "incident %s should be in exactly one bucket", inc.RowID)
	}
}

func TestIndexCategories_FirstOccurrenceKept(t *testing.T) {
	idx := IndexCategories([]Incident{incident("only", "Arson")})

	require.Len(t, idx.Members["Arson"], 1)
	assert.Equal(t, "only", idx.Members["Arson"][0].RowID)
}

func TestIndexCategories_CaseSensitiveKeys(t *testing.T) {
	idx := IndexCategories([]Incident{incident("1", "Assault"), incident("2", "ASSAULT"), incident("3", " Assault")})

	assert.Len(t, idx.Members, 3)
	assert.Equal(t, []string{" Assault", "ASSAULT", "Assault"}, idx.Labels())
}

func TestIndexCategories_TogglesDefaultHidden(t *testing.T) {
	idx := IndexCategories([]Incident{incident("1", "Assault"), incident("2", "Fraud"), incident("3", "Fraud")})

	assert.Equal(t, CategoryToggles{"Assault": false, "Fraud": false}, idx.Toggles)
	assert.Empty(t, idx.Toggles.Visible())
	assert.Equal(t, 2, idx.Count("Fraud"))
	assert.Zero(t, idx.Count("Arson"))
}

func TestIndexCategories_Empty(t *testing.T) {
	idx := IndexCategories(nil)
	assert.Empty(t, idx.Members)
	assert.Empty(t, idx.Toggles)
	assert.Empty(t, idx.Labels())
}

func TestCategoryToggles_Set(t *testing.T) {
	toggles := CategoryToggles{"Assault": false, "Fraud": false}

	require.NoError(t, toggles.Set("Fraud", true))
	assert.Equal(t, []string{"Fraud"}, toggles.Visible())

	err := toggles.Set("Arson", true)
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Len(t, toggles, 2, "unknown labels are never added")

	require.NoError(t, toggles.Set("Fraud", false))
	assert.Empty(t, toggles.Visible())
}

func TestCategoryToggles_CloneIsIndependent(t *testing.T) {
	toggles := CategoryToggles{"Assault": false}
	clone := toggles.Clone()

	require.NoError(t, clone.Set("Assault", true))
	assert.False(t, toggles["Assault"])
}

func TestFilterByCategory(t *testing.T) {
	points := ToGeoPoints([]Incident{
		incident("1", "Assault"),
		incident("2", "Fraud"),
		incident("3", "Assault"),
	})

	got := FilterByCategory(points, []string{"Assault"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Incident.RowID)
	assert.Equal(t, "3", got[1].Incident.RowID)

	assert.Empty(t, FilterByCategory(points, nil))
}
