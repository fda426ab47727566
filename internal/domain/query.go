package domain

import (
	"fmt"
	"time"
)

const (
	// MinQueryLimit and MaxQueryLimit bound the row-limit control.
	MinQueryLimit = 1
	MaxQueryLimit = 1_000_000

	// floatingTimestampLayout is ISO-8601 without a zone designator, the
	// form SODA uses for floating timestamps.
	floatingTimestampLayout = "2006-01-02T15:04:05.000"
)

// QueryParams is a fully resolved incident query.
type QueryParams struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
	Limit int       `json:"limit"`
}

// QueryRequest is a partial update to the current query. Nil fields keep
// their previous value.
type QueryRequest struct {
	Start *time.Time `json:"start_date,omitempty"`
	End   *time.Time `json:"end_date,omitempty"`
	Limit *int       `json:"limit,omitempty"`
}

// DefaultQueryParams covers the window ending now.
func DefaultQueryParams(window time.Duration, limit int) QueryParams {
	end := clock.Now().UTC()
	return QueryParams{Start: end.Add(-window), End: end, Limit: limit}
}

// Apply overlays the non-nil fields of r onto p.
func (p QueryParams) Apply(r QueryRequest) QueryParams {
	if r.Start != nil {
		p.Start = *r.Start
	}
	if r.End != nil {
		p.End = *r.End
	}
	if r.Limit != nil {
		p.Limit = *r.Limit
	}
	return p
}

// Validate checks the limit bounds and that the range is not inverted.
func (p QueryParams) Validate() error {
	if p.Limit < MinQueryLimit || p.Limit > MaxQueryLimit {
		return fmt.Errorf("%w: limit %d outside [%d, %d]", ErrInvalidQuery, p.Limit, MinQueryLimit, MaxQueryLimit)
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidQuery)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: end date %s before start date %s", ErrInvalidQuery,
			FormatFloatingTimestamp(p.End), FormatFloatingTimestamp(p.Start))
	}
	return nil
}

// WhereClause renders the SoQL filter selecting incidents reported within
// [Start, End] inclusive.
func (p QueryParams) WhereClause() string {
	return fmt.Sprintf("incident_date >= '%s' AND incident_date <= '%s'",
		FormatFloatingTimestamp(p.Start), FormatFloatingTimestamp(p.End))
}

// FormatFloatingTimestamp renders t as a UTC ISO-8601 timestamp with
// millisecond precision and no trailing zone designator.
func FormatFloatingTimestamp(t time.Time) string {
	return t.UTC().Format(floatingTimestampLayout)
}

var queryTimeLayouts = []string{
	time.RFC3339Nano,
	floatingTimestampLayout,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseQueryTime accepts RFC 3339, a SODA floating timestamp, or a bare date.
// Zoneless values are read as UTC.
func ParseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidQuery, s)
}
