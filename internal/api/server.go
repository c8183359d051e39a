package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"matinee/internal/catalog"
	"matinee/internal/library"
	"matinee/internal/logging"
)

// Server hosts the HTTP read API.
type Server struct {
	http    *http.Server
	service *library.Service
	store   *catalog.Store
	logger  *slog.Logger
}

// New constructs a Server bound to addr.
func New(addr string, service *library.Service, store *catalog.Store, logger *slog.Logger) *Server {
	s := &Server{
		service: service,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/entries/{id}", s.handleEntry)
	mux.HandleFunc("POST /api/entries/{id}/watched", s.handleWatched)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until Close is called.
func (s *Server) Start() error {
	s.logger.Info("api listening", logging.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the server down, draining in-flight requests briefly.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
