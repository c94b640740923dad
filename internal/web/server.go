// Package web provides the HTTP query surface over the record store: CRUD on
// individual records, the analytical reports, CSV exports, and ingestion of
// new dataset files.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecomlab/salesdesk/internal/config"
	"github.com/ecomlab/salesdesk/internal/core"
	"github.com/ecomlab/salesdesk/internal/export"
	"github.com/ecomlab/salesdesk/internal/ingest"
	"github.com/ecomlab/salesdesk/internal/metrics"
)

// Server is the HTTP server for the sales analytics application.
type Server struct {
	store     *core.RecordStore
	crud      *core.CrudService
	analytics *core.AnalyticsEngine
	exporter  *export.Exporter
	loader    *ingest.Loader
	metrics   *metrics.Metrics
	cfg       *config.Config
	router    *chi.Mux
	server    *http.Server
}

// NewServer wires the components into a router. metrics may be nil (tests).
func NewServer(store *core.RecordStore, m *metrics.Metrics, cfg *config.Config) *Server {
	s := &Server{
		store:     store,
		crud:      core.NewCrudService(store),
		analytics: core.NewAnalyticsEngine(store),
		exporter:  export.NewExporter(store),
		loader:    ingest.NewLoader(store, m),
		metrics:   m,
		cfg:       cfg,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// Record CRUD
		r.Post("/records", s.handleCreateRecord)
		r.Get("/records", s.handleListRecords)
		r.Get("/records/search", s.handleSearchRecords)
		r.Get("/records/{invoiceNo}", s.handleGetRecord)
		r.Patch("/records/{invoiceNo}", s.handleUpdateRecord)
		r.Delete("/records/{invoiceNo}", s.handleDeleteRecord)

		// Reports
		r.Get("/reports/averages", s.handleAverages)
		r.Get("/reports/products", s.handleTopProducts)
		r.Get("/reports/countries", s.handleTopCountries)
		r.Get("/reports/country/{name}", s.handleCountryReport)

		// CSV exports
		r.Get("/export/records", s.handleExportRecords)
		r.Get("/export/products", s.handleExportProducts)
		r.Get("/export/countries", s.handleExportCountries)

		// Dataset ingestion
		r.Post("/ingest", s.handleIngest)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
