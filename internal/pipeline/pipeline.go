package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/observability"
)

// Fetcher retrieves raw incident records for a query.
type Fetcher interface {
	FetchIncidents(ctx context.Context, query domain.QueryParams) ([]domain.RawIncident, error)
}

// Transformer turns a fetched batch into a snapshot.
type Transformer interface {
	Transform(query domain.QueryParams, raws []domain.RawIncident) *Snapshot
}

// Publisher receives every new snapshot.
type Publisher interface {
	Publish(ctx context.Context, event domain.SnapshotEvent) error
}

// Notifier delivers user-facing messages about failed queries.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// PointFilter narrows the current points. A nil Categories uses the visible
// toggles; a nil Bound means the whole batch.
type PointFilter struct {
	Categories []string
	Bound      *orb.Bound
}

// Pipeline owns the current query, the loaded snapshot, and the category
// toggles, and runs one query at a time.
type Pipeline struct {
	fetcher     Fetcher
	transformer Transformer
	notifier    Notifier
	publishers  []Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	ready    atomic.Bool
	inFlight atomic.Bool

	mu       sync.RWMutex
	query    domain.QueryParams
	snapshot *Snapshot
	toggles  domain.CategoryToggles
}

// New creates a Pipeline starting from the given query. notifier may be nil.
func New(f Fetcher, t Transformer, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics, initial domain.QueryParams, publishers ...Publisher) *Pipeline {
	return &Pipeline{
		fetcher:     f,
		transformer: t,
		notifier:    notifier,
		publishers:  publishers,
		logger:      logger,
		metrics:     metrics,
		query:       initial,
	}
}

// CheckReadiness returns nil once a query has succeeded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no incident query has succeeded yet")
	}
	return nil
}

// Update applies req to the current query and, if the result is valid,
// fetches and swaps in a new snapshot. On failure the previous snapshot and
// query stay in place and exactly one notice is sent. A call made while
// another is outstanding fails with domain.ErrQueryInFlight.
func (p *Pipeline) Update(ctx context.Context, req domain.QueryRequest) (*Snapshot, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.metrics.Queries.WithLabelValues("in_flight").Inc()
		return nil, domain.ErrQueryInFlight
	}
	defer p.inFlight.Store(false)

	query := p.Query().Apply(req)
	if err := query.Validate(); err != nil {
		p.metrics.Queries.WithLabelValues("invalid").Inc()
		return nil, err
	}

	start := time.Now()
	raws, err := p.fetcher.FetchIncidents(ctx, query)
	if err != nil {
		p.fail(ctx, query, err)
		return nil, err
	}

	snap := p.transformer.Transform(query, raws)
	if dropped := snap.Received - len(snap.Incidents); dropped > 0 {
		p.metrics.RecordsDropped.Add(float64(dropped))
	}

	toggles := snap.Categories.Toggles.Clone()
	p.mu.Lock()
	p.query = query
	p.snapshot = snap
	p.toggles = toggles
	event := snap.Event(toggles)
	p.mu.Unlock()
	p.ready.Store(true)

	p.metrics.Queries.WithLabelValues("success").Inc()
	p.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	p.metrics.IncidentsCurrent.Set(float64(len(snap.Incidents)))
	p.metrics.CategoriesCurrent.Set(float64(len(snap.Categories.Members)))
	p.logger.Info("incident query complete",
		"start", domain.FormatFloatingTimestamp(query.Start),
		"end", domain.FormatFloatingTimestamp(query.End),
		"limit", query.Limit,
		"received", snap.Received,
		"incidents", len(snap.Incidents),
		"categories", len(snap.Categories.Members),
	)

	p.publish(ctx, event)
	return snap, nil
}

func (p *Pipeline) fail(ctx context.Context, query domain.QueryParams, err error) {
	outcome := "error"
	switch {
	case errors.Is(err, domain.ErrResponseNotList):
		outcome = "not_list"
	case errors.Is(err, domain.ErrTransport):
		outcome = "transport"
	}
	p.metrics.Queries.WithLabelValues(outcome).Inc()
	p.logger.Error("incident query failed",
		"error", err,
		"start", domain.FormatFloatingTimestamp(query.Start),
		"end", domain.FormatFloatingTimestamp(query.End),
		"limit", query.Limit,
	)
	if p.notifier != nil {
		p.notifier.Notify(ctx, domain.NoticeFor(err))
	}
}

func (p *Pipeline) publish(ctx context.Context, event domain.SnapshotEvent) {
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, event); err != nil {
			p.metrics.PublishErrors.WithLabelValues(fmt.Sprintf("%T", pub)).Inc()
			p.logger.Warn("publish snapshot failed", "publisher", fmt.Sprintf("%T", pub), "error", err)
		}
	}
}

// Query returns the query the next Update builds on.
func (p *Pipeline) Query() domain.QueryParams {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.query
}

// Snapshot returns the current snapshot or domain.ErrNoSnapshot.
func (p *Pipeline) Snapshot() (*Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return nil, domain.ErrNoSnapshot
	}
	return p.snapshot, nil
}

// Categories lists the current labels with their visibility.
func (p *Pipeline) Categories() ([]domain.CategoryInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return nil, domain.ErrNoSnapshot
	}
	return p.snapshot.Categories.Categories(p.toggles), nil
}

// SetCategoryVisible toggles one label of the current snapshot.
func (p *Pipeline) SetCategoryVisible(label string, visible bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot == nil {
		return domain.ErrNoSnapshot
	}
	return p.toggles.Set(label, visible)
}

// Points returns the current points matching f, in batch order.
func (p *Pipeline) Points(f PointFilter) ([]domain.GeoPoint, error) {
	p.mu.RLock()
	snap := p.snapshot
	labels := f.Categories
	if labels == nil && snap != nil {
		labels = p.toggles.Visible()
	}
	p.mu.RUnlock()

	if snap == nil {
		return nil, domain.ErrNoSnapshot
	}

	points := snap.Points
	if f.Bound != nil {
		points = snap.Index.Within(*f.Bound)
	}
	return domain.FilterByCategory(points, labels), nil
}

// Insights builds the bar graph fields for the points matching f.
func (p *Pipeline) Insights(f PointFilter) (domain.Insights, error) {
	points, err := p.Points(f)
	if err != nil {
		return domain.Insights{}, err
	}
	return domain.BuildInsights(points), nil
}

// FindIncident looks up a point of the current snapshot by row id.
func (p *Pipeline) FindIncident(rowID string) (domain.Incident, bool, error) {
	snap, err := p.Snapshot()
	if err != nil {
		return domain.Incident{}, false, err
	}
	for _, inc := range snap.Incidents {
		if inc.RowID == rowID {
			return inc, true, nil
		}
	}
	return domain.Incident{}, false, nil
}
