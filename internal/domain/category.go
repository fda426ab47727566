package domain

import (
	"fmt"
	"maps"
	"slices"
)

// CategoryToggles maps a category label to whether its points are visible.
type CategoryToggles map[string]bool

// CategoryIndex groups a batch of incidents by category.
type CategoryIndex struct {
	Members map[string][]Incident
	Toggles CategoryToggles
}

// IndexCategories buckets incidents by their exact category label and derives
// a toggle map with every label hidden. The incident that opens a bucket is
// stored in it.
func IndexCategories(incidents []Incident) CategoryIndex {
	members := make(map[string][]Incident)
	for _, inc := range incidents {
		members[inc.Category] = append(members[inc.Category], inc)
	}

	toggles := make(CategoryToggles, len(members))
	for label := range members {
		toggles[label] = false
	}

	return CategoryIndex{Members: members, Toggles: toggles}
}

// Labels returns the distinct category labels in sorted order.
func (ci CategoryIndex) Labels() []string {
	return slices.Sorted(maps.Keys(ci.Members))
}

// Count returns how many incidents carry the label.
func (ci CategoryIndex) Count(label string) int {
	return len(ci.Members[label])
}

// Set changes the visibility of an existing label.
func (t CategoryToggles) Set(label string, visible bool) error {
	if _, ok := t[label]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	t[label] = visible
	return nil
}

// Visible returns the visible labels in sorted order.
func (t CategoryToggles) Visible() []string {
	out := make([]string, 0, len(t))
	for label, on := range t {
		if on {
			out = append(out, label)
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (t CategoryToggles) Clone() CategoryToggles {
	return maps.Clone(t)
}

// FilterByCategory keeps the points whose category is in labels, preserving
// order.
func FilterByCategory(points []GeoPoint, labels []string) []GeoPoint {
	want := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		want[l] = struct{}{}
	}
	out := make([]GeoPoint, 0, len(points))
	for _, p := range points {
		if _, ok := want[p.Incident.Category]; ok {
			out = append(out, p)
		}
	}
	return out
}
