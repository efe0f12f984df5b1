// Package infrastructure provides core service initialization for application startup.
// It assembles the external systems the contract pipeline depends on: the document
// store, the processing ledger, the model, the document renderer, and the alert
// notifier.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/pipeline"
	"github.com/JaimeStill/counsel/pkg/generate"
	"github.com/JaimeStill/counsel/pkg/ledger"
	"github.com/JaimeStill/counsel/pkg/lifecycle"
	"github.com/JaimeStill/counsel/pkg/notify"
	"github.com/JaimeStill/counsel/pkg/render"
	"github.com/JaimeStill/counsel/pkg/store"
)

// Infrastructure holds the core systems required by the pipeline and its surfaces.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Store     store.System
	Ledger    ledger.Ledger
	Generator generate.Generator
	Renderer  render.Renderer
	Notifier  notify.Notifier
}

// New creates an Infrastructure from the application configuration. Log-backend
// alerts are written to alerts. It initializes all systems but does not start them;
// call Start separately.
func New(ctx context.Context, cfg *config.Config, alerts io.Writer) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	docs, err := store.New(ctx, &cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("store init failed: %w", err)
	}

	led, err := ledger.New(&cfg.Ledger, logger)
	if err != nil {
		return nil, fmt.Errorf("ledger init failed: %w", err)
	}

	gen, err := generate.New(ctx, &cfg.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("model init failed: %w", err)
	}

	notifier, err := notify.New(ctx, &cfg.Notify, alerts, logger)
	if err != nil {
		return nil, fmt.Errorf("notifier init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Store:     docs,
		Ledger:    led,
		Generator: gen,
		Renderer:  render.New(logger),
		Notifier:  notifier,
	}, nil
}

// Start registers the store and ledger with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Store.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("store start failed: %w", err)
	}
	if err := i.Ledger.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("ledger start failed: %w", err)
	}
	return nil
}

// Pipeline builds the contract pipeline over these systems.
func (i *Infrastructure) Pipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	policy, err := cfg.Urgency.Policy()
	if err != nil {
		return nil, fmt.Errorf("urgency policy: %w", err)
	}

	return pipeline.New(
		pipeline.Deps{
			Store:     i.Store,
			Ledger:    i.Ledger,
			Generator: i.Generator,
			Renderer:  i.Renderer,
			Notifier:  i.Notifier,
			Logger:    i.Logger,
		},
		pipeline.Settings{
			Taxonomy:    cfg.Taxonomy,
			Processing:  cfg.Processing,
			Render:      cfg.Render,
			Sampling:    cfg.Model.Options(),
			MaxAttempts: cfg.Ledger.MaxAttempts,
			Recipient:   cfg.Notify.Recipient,
			Policy:      policy,
		},
	), nil
}
