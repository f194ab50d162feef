package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/pkg/log"
)

// Server represents the stats HTTP server
type Server struct {
	Logger  log.Logger
	Config  *cfg.Config
	handler *Handler
	server  *http.Server
	port    int
}

// NewServer creates a new stats server
func NewServer(logger log.Logger, config *cfg.Config, handler *Handler, port int) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("server: nil handler")
	}
	return &Server{
		Logger:  logger,
		Config:  config,
		handler: handler,
		port:    port,
	}, nil
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.handler.RegisterRoutes(mux)

	// Batch lookups pause between groups, so writes get more time than reads.
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting stats server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down stats server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
