package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	httpadapter "github.com/couchcryptid/sf-incident-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sf-incident-map/internal/adapter/kafka"
	"github.com/couchcryptid/sf-incident-map/internal/adapter/mapbox"
	"github.com/couchcryptid/sf-incident-map/internal/adapter/socrata"
	"github.com/couchcryptid/sf-incident-map/internal/adapter/ws"
	"github.com/couchcryptid/sf-incident-map/internal/config"
	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/observability"
	"github.com/couchcryptid/sf-incident-map/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Place lookup is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.ReverseGeocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocode cache", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox place lookup enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox place lookup disabled")
	}

	hub := ws.NewHub(ws.Options{
		Debounce:       cfg.ViewportDebounce,
		Constraints:    domain.DefaultViewConstraints,
		Scale:          domain.DefaultRadiusScale,
		AllowedOrigins: cfg.CORSOrigins,
	}, metrics, logger)

	publishers := []pipeline.Publisher{hub}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publishers = append(publishers, writer)
		logger.Info("kafka incident feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	fetcher := socrata.NewClient(cfg.SocrataURL, cfg.SocrataAppToken, cfg.SocrataTimeout, metrics, logger)
	if cfg.SocrataAppToken == "" {
		logger.Warn("SOCRATA_APP_TOKEN not set, requests are subject to anonymous throttling")
	}
	transformer := pipeline.NewTransformer(logger)
	initial := domain.DefaultQueryParams(cfg.QueryWindow, cfg.QueryLimit)

	p := pipeline.New(fetcher, transformer, hub, logger, metrics, initial, publishers...)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:         cfg.HTTPAddr,
		WriteTimeout: cfg.SocrataTimeout + cfg.ShutdownTimeout,
		CORSOrigins:  cfg.CORSOrigins,
		Incidents:    p,
		Geocoder:     geocoder,
		Hub:          hub,
		Client: httpadapter.ClientConfig{
			MapboxToken:  publicToken(cfg.MapboxToken),
			InitialStyle: domain.InitialMapStyle,
			InitialView:  domain.InitialViewState,
			Constraints:  domain.DefaultViewConstraints,
			Radius:       domain.DefaultRadiusScale,
		},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the default window so the map has data on first paint.
	if cfg.InitialQuery {
		go func() {
			if _, err := p.Update(ctx, domain.QueryRequest{}); err != nil {
				logger.Error("initial incident query failed", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// publicToken forwards only Mapbox public (pk.) tokens to browsers.
func publicToken(token string) string {
	if strings.HasPrefix(token, "pk.") {
		return token
	}
	return ""
}
