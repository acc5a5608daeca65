package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/config"
	pchttp "github.com/aretw0/pagecraft/pkg/adapters/http"
	"github.com/aretw0/pagecraft/pkg/observability"
	"github.com/aretw0/pagecraft/pkg/versions"
)

// ShutdownTimeout bounds the graceful stop of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// Server is a configured HTTP server with its backend.
type Server struct {
	Workspace *pagecraft.Workspace
	Backend   *Backend
	HTTP      *http.Server
	Scheduler *versions.Scheduler

	cfg    *config.Config
	logger *slog.Logger
}

// NewServer opens the backend and assembles the workspace, the metrics, the
// event stream and the HTTP handler. A nil registry uses the default one.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Server, error) {
	b, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics(reg)
	streams := pchttp.NewStreamManager(logger)
	hooks := metrics.Hooks().
		Merge(observability.LogHooks(logger)).
		Merge(streams.Hooks())
	ws := NewWorkspace(b, cfg, logger, hooks)

	handler := pchttp.NewHandler(ws,
		pchttp.WithLogger(logger),
		pchttp.WithStreams(streams),
		pchttp.WithMetrics(metrics.Handler()),
		pchttp.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		pchttp.WithRequestTimeout(cfg.Server.Timeout()),
	)

	s := &Server{
		Workspace: ws,
		Backend:   b,
		HTTP: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cfg:    cfg,
		logger: logger,
	}

	if spec := cfg.Versions.Schedule; spec != "" {
		s.Scheduler = versions.NewScheduler(ws.Versions(), b.Projects.List, logger)
		if err := s.Scheduler.Schedule(spec); err != nil {
			_ = b.Close()
			return nil, err
		}
	}
	return s, nil
}

// Run serves until ctx is cancelled, then drains requests, flushes open
// sessions and closes the backend.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.HTTP.Addr)
	if err != nil {
		_ = s.Backend.Close()
		return fmt.Errorf("listen %s: %w", s.HTTP.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.Backend.Catalog != nil && s.cfg.Catalog.Watch {
		reloads, err := s.Backend.Catalog.Watch(ctx)
		if err != nil {
			s.logger.Warn("catalog watch disabled", "err", err)
		} else {
			go func() {
				for range reloads {
					s.logger.Info("catalog reloaded", "path", s.Backend.Catalog.Path())
				}
			}()
		}
	}
	if s.Scheduler != nil {
		s.Scheduler.Start(ctx)
		s.logger.Info("version scheduler started", "schedule", s.cfg.Versions.Schedule)
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("pagecraft server listening", "address", ln.Addr().String())
		serverErrors <- s.HTTP.Serve(ln)
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.HTTP.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			_ = s.HTTP.Close()
		}
	}

	if s.Scheduler != nil {
		s.Scheduler.Stop()
	}
	return multierr.Combine(runErr, s.Close())
}

// Close flushes open sessions and releases the backend.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return multierr.Combine(s.Workspace.Close(ctx), s.Backend.Close())
}
