package monitor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/JaimeStill/counsel/internal/monitor"
	"github.com/JaimeStill/counsel/internal/pipeline"
	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRunner struct {
	passes   atomic.Int32
	sweeps   atomic.Int32
	panicOn  int32
	failPass bool
	stopAt   int32
	cancel   context.CancelFunc
}

func (r *countingRunner) ProcessNewContracts(ctx context.Context) (*pipeline.Report, error) {
	n := r.passes.Add(1)
	if r.stopAt > 0 && n == r.stopAt {
		r.cancel()
	}
	if n == r.panicOn {
		panic("listing exploded")
	}
	if r.failPass {
		return nil, errors.New("store unavailable")
	}
	return &pipeline.Report{}, nil
}

func (r *countingRunner) Sweep(ctx context.Context) (*pipeline.SweepReport, error) {
	r.sweeps.Add(1)
	return &pipeline.SweepReport{}, nil
}

func runUntil(t *testing.T, r *countingRunner, sweepEvery int) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.cancel = cancel

	m := monitor.New(r, time.Millisecond, sweepEvery, discard())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestRunCadence(t *testing.T) {
	r := &countingRunner{stopAt: 11}
	runUntil(t, r, 3)

	// One startup pass plus ten loop passes; loop passes 3, 6, and 9 also sweep.
	if got := r.passes.Load(); got != 11 {
		t.Errorf("passes: got %d, want 11", got)
	}
	if got := r.sweeps.Load(); got != 1+3 {
		t.Errorf("sweeps: got %d, want 4", got)
	}
}

func TestRunSurvivesPanicsAndErrors(t *testing.T) {
	r := &countingRunner{panicOn: 2, failPass: true, stopAt: 5}
	runUntil(t, r, 100)

	if got := r.passes.Load(); got != 5 {
		t.Errorf("passes: got %d, want 5", got)
	}
	if got := r.sweeps.Load(); got != 1 {
		t.Errorf("sweeps: got %d, want 1", got)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &countingRunner{}
	monitor.New(r, time.Hour, 1, discard()).Run(ctx)

	if r.passes.Load() != 0 || r.sweeps.Load() != 0 {
		t.Error("cancelled monitor ran work")
	}
}

func TestStartWithLifecycle(t *testing.T) {
	lc := lifecycle.New()
	r := &countingRunner{}
	m := monitor.New(r, time.Millisecond, 2, discard())

	if err := m.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	lc.WaitForStartup()

	deadline := time.Now().Add(5 * time.Second)
	for r.passes.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if r.passes.Load() < 3 {
		t.Errorf("passes: got %d, want at least 3", r.passes.Load())
	}
}
