package domain

import "time"

// CategoryInfo describes one category for the filter menu.
type CategoryInfo struct {
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
	Count   int    `json:"count"`
	Color   Color  `json:"color"`
}

// Categories lists every label in the index, sorted, with its visibility
// taken from toggles.
func (ci CategoryIndex) Categories(toggles CategoryToggles) []CategoryInfo {
	labels := ci.Labels()
	out := make([]CategoryInfo, len(labels))
	for i, label := range labels {
		out[i] = CategoryInfo{
			Label:   label,
			Visible: toggles[label],
			Count:   ci.Count(label),
			Color:   ColorFor(label),
		}
	}
	return out
}

// SnapshotEvent announces a freshly loaded incident batch to downstream
// publishers.
type SnapshotEvent struct {
	Query      QueryParams    `json:"query"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Incidents  int            `json:"incidents"`
	Categories []CategoryInfo `json:"categories"`
	Points     []GeoPoint     `json:"-"`
}
