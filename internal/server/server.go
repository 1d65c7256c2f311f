// Package server provides the HTTP API for fandex.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/fandex/internal/catalog"
	"github.com/hyperjump/fandex/internal/config"
	"github.com/hyperjump/fandex/internal/metrics"
	"github.com/hyperjump/fandex/internal/search"
)

// Server is the HTTP server for the fandex API.
type Server struct {
	service *search.Service
	store   *catalog.Store
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. store may be nil,
// in which case the status endpoint reports no snapshot details.
func NewServer(service *search.Service, store *catalog.Store, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service: service,
		store:   store,
		config:  cfg,
		logger:  logger,
	}
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	metrics.Register()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/search", s.handleSearchGet)
		r.Post("/search", s.handleSearchPost)
		r.Route("/{domain}", func(r chi.Router) {
			r.Get("/search", s.handleDomainSearch)
			r.Get("/suggest", s.handleSuggest)
			r.Get("/items/{id}", s.handleGetItem)
			r.Get("/items/{id}/similar", s.handleSimilar)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
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
