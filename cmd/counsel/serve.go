package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/counsel/internal/config"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	ctx := cmd.Context()
	srv, err := NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("server init failed: %w", err)
	}

	if err := srv.Start(ctx); err != nil {
		srv.Shutdown(cfg.ShutdownTimeoutDuration())
		return fmt.Errorf("server start failed: %w", err)
	}

	<-ctx.Done()
	return srv.Shutdown(cfg.ShutdownTimeoutDuration())
}
