package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/pipeline"
)

// IncidentService is the pipeline surface the API drives.
type IncidentService interface {
	sharedobs.ReadinessChecker
	Update(ctx context.Context, req domain.QueryRequest) (*pipeline.Snapshot, error)
	Query() domain.QueryParams
	Categories() ([]domain.CategoryInfo, error)
	SetCategoryVisible(label string, visible bool) error
	Points(f pipeline.PointFilter) ([]domain.GeoPoint, error)
	Insights(f pipeline.PointFilter) (domain.Insights, error)
	FindIncident(rowID string) (domain.Incident, bool, error)
}

// Options wires the server's collaborators. Geocoder and Hub may be nil.
type Options struct {
	Addr         string
	WriteTimeout time.Duration
	CORSOrigins  []string
	Incidents    IncidentService
	Geocoder     domain.ReverseGeocoder
	Hub          http.Handler
	Client       ClientConfig
}

// Server exposes the incident map API plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	incidents IncidentService
	geocoder  domain.ReverseGeocoder
	client    ClientConfig
}

// NewServer creates the HTTP server and registers every route.
func NewServer(opts Options, logger *slog.Logger) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		logger:    logger,
		incidents: opts.Incidents,
		geocoder:  opts.Geocoder,
		client:    opts.Client,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(opts.Incidents)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if opts.Hub != nil {
		r.Handle("/ws", opts.Hub).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(handlers.CompressHandler)
	api.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	api.HandleFunc("/styles/{value}", s.handleStyle).Methods(http.MethodGet)
	api.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	api.HandleFunc("/incidents", s.handleIncidents).Methods(http.MethodGet)
	api.HandleFunc("/incidents/{rowID}/place", s.handlePlace).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{label}", s.handleSetCategory).Methods(http.MethodPut)
	api.HandleFunc("/insights", s.handleInsights).Methods(http.MethodGet)
	api.HandleFunc("/radius", s.handleRadius).Methods(http.MethodGet)
	api.HandleFunc("/view", s.handleView).Methods(http.MethodPost)

	var h http.Handler = r
	h = handlers.CustomLoggingHandler(io.Discard, h, accessLog(logger))
	h = handlers.CORS(
		handlers.AllowedOrigins(opts.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
		handlers.PrintRecoveryStack(false),
	)(h)

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func accessLog(logger *slog.Logger) handlers.LogFormatter {
	return func(_ io.Writer, p handlers.LogFormatterParams) {
		level := slog.LevelDebug
		if p.StatusCode >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(p.Request.Context(), level, "http request",
			"method", p.Request.Method,
			"path", p.URL.Path,
			"status", p.StatusCode,
			"bytes", p.Size,
			"duration", time.Since(p.TimeStamp),
		)
	}
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("http handler panic", "panic", fmt.Sprint(v...))
}
