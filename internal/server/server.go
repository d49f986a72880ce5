// Package server provides the HTTP API for Shirabe.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/ingest"
	"github.com/hyperjump/shirabe/internal/scan"
	"github.com/hyperjump/shirabe/internal/storage"
)

// Server is the HTTP server for the Shirabe API.
type Server struct {
	engine   *scan.Engine
	ingester *ingest.Ingester
	storage  storage.Storage
	config   *config.Config
	version  string
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *scan.Engine,
	ingester *ingest.Ingester,
	store storage.Storage,
	cfg *config.Config,
	version string,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:   engine,
		ingester: ingester,
		storage:  store,
		config:   cfg,
		version:  version,
		logger:   logger,
	}
}

// Handler builds the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/reports", s.handleCreateReport)
	r.Get("/api/reports", s.handleListReports)
	r.Get("/api/reports/{id}", s.handleGetReport)
	r.Delete("/api/reports/{id}", s.handleDeleteReport)
	r.Post("/api/reports/{id}/match", s.handleMatchReport)
	r.Post("/api/reports/{id}/matchall", s.handleMatchAllReport)
	r.Post("/api/scan", s.handleScan)
	r.Post("/api/ingest", s.handleIngest)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", s.Handler())

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
