// Package monitor runs the polling loop that drives discovery passes and the periodic
// action-item sweep.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/JaimeStill/counsel/internal/pipeline"
	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

// Runner is the work the loop schedules.
type Runner interface {
	ProcessNewContracts(ctx context.Context) (*pipeline.Report, error)
	Sweep(ctx context.Context) (*pipeline.SweepReport, error)
}

// Monitor runs one discovery pass per poll interval and a sweep every sweepEvery
// passes, so both cadences share one loop. A discovery pass and a sweep also run
// immediately on start.
type Monitor struct {
	runner     Runner
	poll       time.Duration
	sweepEvery int
	logger     *slog.Logger
}

// New creates a Monitor. sweepEvery below one is treated as one.
func New(runner Runner, poll time.Duration, sweepEvery int, logger *slog.Logger) *Monitor {
	return &Monitor{
		runner:     runner,
		poll:       poll,
		sweepEvery: max(1, sweepEvery),
		logger:     logger.With("system", "monitor"),
	}
}

// Start runs the loop as a lifecycle worker: it begins once startup completes, and
// shutdown waits for the in-flight iteration to finish.
func (m *Monitor) Start(lc *lifecycle.Coordinator) error {
	lc.Go(m.Run)
	return nil
}

// Run blocks until ctx is cancelled. A panic or error inside an iteration is logged
// and the loop continues.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.InfoContext(ctx, "monitor started",
		"poll_interval", m.poll,
		"sweep_every", m.sweepEvery,
	)

	m.guard(ctx, "discovery pass", m.pass)
	m.guard(ctx, "action item sweep", m.sweep)

	timer := time.NewTimer(m.poll)
	defer timer.Stop()

	passes := 0
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor shutting down", "passes", passes)
			return
		case <-timer.C:
		}

		passes++
		m.guard(ctx, "discovery pass", m.pass)
		if passes%m.sweepEvery == 0 {
			m.guard(ctx, "action item sweep", m.sweep)
		}

		timer.Reset(m.poll)
	}
}

func (m *Monitor) pass(ctx context.Context) error {
	_, err := m.runner.ProcessNewContracts(ctx)
	return err
}

func (m *Monitor) sweep(ctx context.Context) error {
	_, err := m.runner.Sweep(ctx)
	return err
}

func (m *Monitor) guard(ctx context.Context, name string, fn func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, name+" panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	if err := fn(ctx); err != nil {
		m.logger.ErrorContext(ctx, name+" failed", "error", err)
	}
}
