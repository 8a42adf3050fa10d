// Package server exposes the evaluation pipeline over HTTP: multipart
// submission, job status polling, a websocket status watch, health probes
// and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/orato/internal/health"
	"github.com/MrWong99/orato/internal/job"
	"github.com/MrWong99/orato/internal/observe"
	"github.com/MrWong99/orato/internal/store"
)

// defaultMaxUploadBytes caps multipart uploads at 25 MiB.
const defaultMaxUploadBytes = 25 << 20

// Config holds the HTTP server configuration.
type Config struct {
	Addr           string
	MaxUploadBytes int64

	Runner   *job.Runner
	Registry *job.Registry

	// Store restores archived results for jobs already evicted from the
	// registry. Nil disables the fallback.
	Store store.Store

	// Health serves /healthz and /readyz. Nil means probes with no
	// readiness checkers.
	Health *health.Handler

	// Metrics overrides the /metrics handler, used by tests. Nil means the
	// default Prometheus handler.
	Metrics http.Handler

	// Observe provides the request middleware instruments. Nil means the
	// process-wide defaults.
	Observe *observe.Metrics
}

// Server wraps the HTTP server with its routes.
type Server struct {
	cfg Config
	srv *http.Server
}

// New creates a Server with all routes registered.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("server: runner and registry are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.Health == nil {
		cfg.Health = health.New()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = promhttp.Handler()
	}
	if cfg.Observe == nil {
		cfg.Observe = observe.DefaultMetrics()
	}

	h := &handlers{
		runner:    cfg.Runner,
		reg:       cfg.Registry,
		archive:   cfg.Store,
		maxUpload: cfg.MaxUploadBytes,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /evaluate", h.handleEvaluate)
	mux.HandleFunc("GET /jobs", h.handleJobs)
	mux.HandleFunc("GET /jobs/{id}", h.handleJobStatus)
	mux.HandleFunc("GET /jobs/{id}/watch", h.handleWatch)
	mux.Handle("GET /metrics", cfg.Metrics)
	cfg.Health.Register(mux)

	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           observe.Middleware(cfg.Observe)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe starts the server and blocks until ctx is cancelled or the
// listener fails. Cancellation triggers a graceful shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	slog.Info("http server starting", "addr", s.srv.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "err", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Handler returns the root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
