// Package app assembles the server: provider, search registry,
// orchestrator, HTTP surface, and the periodic session sweep.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"github.com/yunseol/ingrid/internal/api"
	"github.com/yunseol/ingrid/internal/config"
	"github.com/yunseol/ingrid/internal/orchestrator"
	"github.com/yunseol/ingrid/internal/provider"
	"github.com/yunseol/ingrid/internal/search"
	"github.com/yunseol/ingrid/internal/supervisor"
)

type Server struct {
	cfg   config.Config
	echo  *echo.Echo
	cron  *cron.Cron
	orch  *orchestrator.Orchestrator
	sweep cron.EntryID
}

// NewServer builds a fully wired server from configuration. Configuration
// problems are fatal here, before any traffic is served.
func NewServer(cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	completer := provider.NewOpenAI(cfg.LLM)

	// The registry must be fully populated before serving traffic; it is
	// read-only afterwards.
	registry := search.NewRegistry()
	registry.Register(cfg.Search.Index, search.NewHTTPClient(cfg.Search, cfg.Search.Index))

	orch := orchestrator.NewDefault(cfg, completer, registry, supervisor.DispatchAgent)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	api.NewHandler(orch).RegisterRoutes(e)

	s := &Server{
		cfg:  cfg,
		echo: e,
		cron: cron.New(),
		orch: orch,
	}

	interval := cfg.Session.SweepIntervalMinutes
	if interval <= 0 {
		interval = 5
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", interval), func() {
		if removed := orch.Sessions().SweepExpired(); removed > 0 {
			slog.Info("session sweep", "removed", removed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session sweep: %w", err)
	}
	s.sweep = entryID

	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.cron.Start()
	defer s.cron.Stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "bind", s.cfg.Bind)
		errCh <- s.echo.Start(s.cfg.Bind)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}

// Orchestrator exposes the wired pipeline, for embedding the server in other
// front-ends.
func (s *Server) Orchestrator() *orchestrator.Orchestrator {
	return s.orch
}
