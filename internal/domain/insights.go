package domain

import "slices"

// Insights is a per-day incident count for the bar chart.
type Insights struct {
	Title       string   `json:"title"`
	Dates       []string `json:"dates"`
	Occurrences []int    `json:"occurrences"`
}

const (
	noInsightTitle     = "No Insight"
	mixedInsightsTitle = "Incidents"
)

// BuildInsights counts points per incident_date in ascending date order. The
// title is the category of the earliest point, or "Incidents" once a single
// day mixes categories.
func BuildInsights(points []GeoPoint) Insights {
	if len(points) == 0 {
		return Insights{Title: noInsightTitle, Dates: []string{}, Occurrences: []int{}}
	}

	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b GeoPoint) int {
		switch {
		case a.Incident.IncidentDate < b.Incident.IncidentDate:
			return -1
		case a.Incident.IncidentDate > b.Incident.IncidentDate:
			return 1
		}
		return 0
	})

	title := sorted[0].Incident.Category
	prev := sorted[0].Incident.IncidentDate
	dates := []string{prev}
	counts := []int{1}

	for _, p := range sorted[1:] {
		if p.Incident.IncidentDate == prev {
			counts[len(counts)-1]++
			if p.Incident.Category != title {
				title = mixedInsightsTitle
			}
			continue
		}
		prev = p.Incident.IncidentDate
		dates = append(dates, prev)
		counts = append(counts, 1)
	}

	return Insights{Title: title, Dates: dates, Occurrences: counts}
}
