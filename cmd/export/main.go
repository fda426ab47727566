// Command export runs one incident query against the SF open data portal and
// writes the result as a GeoJSON FeatureCollection.
//
// Usage:
//
//	go run ./cmd/export \
//	  -start 2023-05-01 -end 2023-05-31 \
//	  -limit 5000 \
//	  -out data/incidents_2023_05.geojson
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/sf-incident-map/internal/adapter/socrata"
	"github.com/couchcryptid/sf-incident-map/internal/config"
	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/observability"
	"github.com/couchcryptid/sf-incident-map/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "", "start date, RFC 3339 or 2006-01-02 (default: QUERY_WINDOW before now)")
	end := flag.String("end", "", "end date, RFC 3339 or 2006-01-02 (default: now)")
	limit := flag.Int("limit", 0, "maximum records to request (default: QUERY_LIMIT)")
	out := flag.String("out", "", "output path (default: stdout)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	query, err := buildQuery(cfg, *start, *end, *limit)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SocrataTimeout)
	defer cancel()

	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	client := socrata.NewClient(cfg.SocrataURL, cfg.SocrataAppToken, cfg.SocrataTimeout, metrics, logger)
	raws, err := client.FetchIncidents(ctx, query)
	if err != nil {
		return fmt.Errorf("query incidents: %w: %s", err, domain.NoticeFor(err))
	}

	snap := pipeline.NewTransformer(logger).Transform(query, raws)
	log.Printf("%d records received, %d incidents with coordinates, %d categories",
		snap.Received, len(snap.Incidents), len(snap.Categories.Members))

	return writeGeoJSON(*out, snap.Points)
}

func buildQuery(cfg *config.Config, start, end string, limit int) (domain.QueryParams, error) {
	var req domain.QueryRequest
	if start != "" {
		t, err := domain.ParseQueryTime(start)
		if err != nil {
			return domain.QueryParams{}, err
		}
		req.Start = &t
	}
	if end != "" {
		t, err := domain.ParseQueryTime(end)
		if err != nil {
			return domain.QueryParams{}, err
		}
		req.End = &t
	}
	if limit != 0 {
		req.Limit = &limit
	}

	query := domain.DefaultQueryParams(cfg.QueryWindow, cfg.QueryLimit).Apply(req)
	if err := query.Validate(); err != nil {
		return domain.QueryParams{}, err
	}
	return query, nil
}

func writeGeoJSON(path string, points []domain.GeoPoint) error {
	data, err := domain.ToFeatureCollection(points).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if path != "" {
		log.Printf("wrote %d features to %s at %s", len(points), path, time.Now().Format(time.RFC3339))
	}
	return nil
}
