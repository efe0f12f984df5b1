package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/infrastructure"
	"github.com/JaimeStill/counsel/internal/pipeline"
)

func runProcess(cmd *cobra.Command, args []string) error {
	return runOnce(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) (any, error) {
		return p.ProcessNewContracts(ctx)
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	return runOnce(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) (any, error) {
		return p.Sweep(ctx)
	})
}

// runOnce brings up infrastructure without the monitor or HTTP server, runs fn once
// against an initialized pipeline, and prints the result as JSON on stdout. Alerts
// from the log notifier go to stderr so stdout stays parseable.
func runOnce(ctx context.Context, fn func(context.Context, *pipeline.Pipeline) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	infra, err := infrastructure.New(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	if err := infra.Start(); err != nil {
		return err
	}
	infra.Lifecycle.WaitForStartup()

	p, err := infra.Pipeline(cfg)
	if err != nil {
		return err
	}
	if err := p.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize taxonomy: %w", err)
	}

	result, err := fn(ctx, p)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
