package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenodude/plex-watchlist/internal/api/handlers"
	"github.com/cenodude/plex-watchlist/internal/api/middleware"
	"github.com/cenodude/plex-watchlist/internal/controllers"
	"github.com/cenodude/plex-watchlist/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	reconcile *controllers.ReconcileController
	scheduler *scheduler.Scheduler
	pinger    handlers.Pinger
	schedule  string
	logger    *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(port, schedule string, reconcile *controllers.ReconcileController, sched *scheduler.Scheduler, pinger handlers.Pinger, logger *logrus.Logger) *Server {
	s := &Server{
		reconcile: reconcile,
		scheduler: sched,
		pinger:    pinger,
		schedule:  schedule,
		logger:    logger,
	}

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler wrapped in the logging middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)
	return middleware.Logging(mux, s.logger)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.pinger, s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.reconcile.Settings(), s.schedule, s.scheduler, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	mux.Handle("/metrics", promhttp.Handler())

	// Playback events, e.g. from a Tautulli webhook agent
	webhookHandler := handlers.NewWebhookHandler(s.reconcile, s.logger)
	mux.HandleFunc("/api/webhook/event", webhookHandler.ServeHTTP)

	sweepHandler := handlers.NewSweepHandler(s.scheduler, s.logger)
	mux.HandleFunc("/api/sweep", sweepHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
