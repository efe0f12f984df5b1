package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/counsel/internal/api"
	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/infrastructure"
	"github.com/JaimeStill/counsel/internal/monitor"
	"github.com/JaimeStill/counsel/internal/pipeline"
)

// Server runs the monitoring loop alongside the operator API.
type Server struct {
	infra    *infrastructure.Infrastructure
	pipeline *pipeline.Pipeline
	monitor  *monitor.Monitor
	http     *httpServer
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(ctx, cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	p, err := infra.Pipeline(cfg)
	if err != nil {
		return nil, err
	}

	var srv *httpServer
	if cfg.Server.Serving() {
		apiModule, err := api.NewModule(cfg, p, infra.Ledger, infra.Logger)
		if err != nil {
			return nil, err
		}

		router := buildRouter(infra)
		router.Mount(apiModule)
		srv = newHTTPServer(&cfg.Server, router, infra.Logger)
	}

	infra.Logger.Info(
		"server initialized",
		"http", cfg.Server.Serving(),
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"store", cfg.Store.Backend,
		"ledger", infra.Ledger.Backend(),
		"model", cfg.Model.Provider,
	)

	return &Server{
		infra:    infra,
		pipeline: p,
		monitor: monitor.New(
			p,
			cfg.Monitor.PollIntervalDuration(),
			cfg.Monitor.SweepEvery(),
			infra.Logger,
		),
		http: srv,
	}, nil
}

// Start brings up infrastructure, resolves the folder taxonomy, and launches the
// monitor and HTTP server. A taxonomy failure is fatal.
func (s *Server) Start(ctx context.Context) error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}
	s.infra.Lifecycle.WaitForStartup()

	if err := s.pipeline.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize taxonomy: %w", err)
	}

	if err := s.monitor.Start(s.infra.Lifecycle); err != nil {
		return err
	}
	if s.http != nil {
		if err := s.http.Start(s.infra.Lifecycle); err != nil {
			return err
		}
	}

	s.infra.Logger.Info("all subsystems ready")
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
