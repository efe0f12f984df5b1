// Package api assembles the operator HTTP module over the contract pipeline.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/pipeline"
	"github.com/JaimeStill/counsel/pkg/ledger"
	"github.com/JaimeStill/counsel/pkg/middleware"
	"github.com/JaimeStill/counsel/pkg/module"
	"github.com/JaimeStill/counsel/pkg/routes"
)

// Pipeline is the subset of the contract pipeline the API exposes.
type Pipeline interface {
	Status() pipeline.Status
	Contracts(ctx context.Context) ([]pipeline.ContractState, error)
	ProcessNewContracts(ctx context.Context) (*pipeline.Report, error)
	Sweep(ctx context.Context) (*pipeline.SweepReport, error)
}

// NewModule creates the API module with the pipeline handlers and middleware.
func NewModule(cfg *config.Config, p Pipeline, led ledger.Ledger, logger *slog.Logger) (*module.Module, error) {
	logger = logger.With("module", "api")
	h := newHandler(p, led, logger)

	mux := http.NewServeMux()
	routes.Register(mux, h.routes()...)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(logger))

	return m, nil
}
