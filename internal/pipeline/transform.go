package pipeline

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/geoindex"
)

// Snapshot is one successfully loaded incident batch. It is never mutated
// after the pipeline swaps it in.
type Snapshot struct {
	Query      domain.QueryParams
	FetchedAt  time.Time
	Received   int
	Incidents  []domain.Incident
	Categories domain.CategoryIndex
	Points     []domain.GeoPoint
	Index      *geoindex.Index
}

// Event summarizes the snapshot for publishers, with every category
// visibility taken from toggles.
func (s *Snapshot) Event(toggles domain.CategoryToggles) domain.SnapshotEvent {
	return domain.SnapshotEvent{
		Query:      s.Query,
		FetchedAt:  s.FetchedAt,
		Incidents:  len(s.Incidents),
		Categories: s.Categories.Categories(toggles),
		Points:     s.Points,
	}
}

// IncidentTransformer implements Transformer with the domain normalization,
// category indexing, and geo point functions.
type IncidentTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates an IncidentTransformer.
func NewTransformer(logger *slog.Logger) *IncidentTransformer {
	return &IncidentTransformer{logger: logger}
}

func (t *IncidentTransformer) Transform(query domain.QueryParams, raws []domain.RawIncident) *Snapshot {
	incidents := domain.NormalizeRecords(raws)
	if dropped := len(raws) - len(incidents); dropped > 0 {
		t.logger.Debug("dropped incidents without coordinates", "dropped", dropped, "kept", len(incidents))
	}

	points := domain.ToGeoPoints(incidents)
	return &Snapshot{
		Query:      query,
		FetchedAt:  domain.Now().UTC(),
		Received:   len(raws),
		Incidents:  incidents,
		Categories: domain.IndexCategories(incidents),
		Points:     points,
		Index:      geoindex.New(points),
	}
}
