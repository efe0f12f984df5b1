package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "counsel",
	Short: "Contract intake pipeline",
	Long: `counsel watches an intake folder for uploaded contracts, classifies each one,
generates a protective artifact set into a per-category output folder, and
periodically alerts on contract deadlines that are close.

Run without a subcommand to start the service.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"serve"},
	Short:   "Run the monitoring loop and operator API until interrupted",
	RunE:    runServe,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one discovery pass and print its report",
	RunE:  runProcess,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one action-item sweep and print its report",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(runCmd, processCmd, sweepCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
