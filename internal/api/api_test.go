package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/counsel/internal/api"
	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/contracts"
	"github.com/JaimeStill/counsel/internal/pipeline"
	"github.com/JaimeStill/counsel/pkg/ledger"
	"github.com/JaimeStill/counsel/pkg/module"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePipeline struct {
	err       error
	processed int
	swept     int
	ctxErr    error
}

func (f *fakePipeline) Status() pipeline.Status {
	return pipeline.Status{Ready: f.err == nil, Ledger: "memory"}
}

func (f *fakePipeline) Contracts(ctx context.Context) ([]pipeline.ContractState, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []pipeline.ContractState{
		{Identity: contracts.Identity{Name: "lease", FileID: "Smart_Contracts/lease.pdf", File: "lease.pdf"}},
	}, nil
}

func (f *fakePipeline) ProcessNewContracts(ctx context.Context) (*pipeline.Report, error) {
	f.processed++
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Report{PassID: "pass-1", Discovered: 2, Skipped: 2}, nil
}

func (f *fakePipeline) Sweep(ctx context.Context) (*pipeline.SweepReport, error) {
	f.swept++
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.SweepReport{SweepID: "sweep-1", Scanned: 1}, nil
}

func setup(t *testing.T, p *fakePipeline) (*module.Router, ledger.Ledger) {
	t.Helper()

	cfg := &config.Config{}
	if err := cfg.API.Finalize(); err != nil {
		t.Fatalf("finalize api config: %v", err)
	}

	led := ledger.NewMemory(0, discard())
	m, err := api.NewModule(cfg, p, led, discard())
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}

	router := module.NewRouter()
	router.Mount(m)
	return router, led
}

func do(t *testing.T, router http.Handler, method, path string, dst any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	if dst != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestStatus(t *testing.T) {
	router, _ := setup(t, &fakePipeline{})

	var status pipeline.Status
	if code := do(t, router, "GET", "/api/status", &status); code != http.StatusOK {
		t.Fatalf("status: got %d", code)
	}
	if !status.Ready || status.Ledger != "memory" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestProcessAndSweep(t *testing.T) {
	p := &fakePipeline{}
	router, _ := setup(t, p)

	var report pipeline.Report
	if code := do(t, router, "POST", "/api/process", &report); code != http.StatusOK {
		t.Fatalf("process: got %d", code)
	}
	if report.PassID != "pass-1" || report.Skipped != 2 {
		t.Errorf("unexpected report: %+v", report)
	}

	var sweep pipeline.SweepReport
	if code := do(t, router, "POST", "/api/sweep", &sweep); code != http.StatusOK {
		t.Fatalf("sweep: got %d", code)
	}
	if sweep.SweepID != "sweep-1" {
		t.Errorf("unexpected sweep: %+v", sweep)
	}

	if code := do(t, router, "GET", "/api/process", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("GET /process: got %d, want 405", code)
	}
	if p.processed != 1 || p.swept != 1 {
		t.Errorf("calls: processed=%d swept=%d", p.processed, p.swept)
	}
}

func TestProcessDetachedFromRequest(t *testing.T) {
	p := &fakePipeline{}
	router, _ := setup(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/process", nil).WithContext(ctx))

	if p.ctxErr != nil {
		t.Errorf("pass saw cancelled context: %v", p.ctxErr)
	}
}

func TestContracts(t *testing.T) {
	router, _ := setup(t, &fakePipeline{})

	var states []pipeline.ContractState
	if code := do(t, router, "GET", "/api/contracts", &states); code != http.StatusOK {
		t.Fatalf("contracts: got %d", code)
	}
	if len(states) != 1 || states[0].Name != "lease" {
		t.Errorf("unexpected contracts: %+v", states)
	}
}

func TestNotInitialized(t *testing.T) {
	router, _ := setup(t, &fakePipeline{err: pipeline.ErrNotInitialized})

	for _, tt := range []struct{ method, path string }{
		{"POST", "/api/process"},
		{"POST", "/api/sweep"},
		{"GET", "/api/contracts"},
	} {
		t.Run(tt.path, func(t *testing.T) {
			var body map[string]string
			if code := do(t, router, tt.method, tt.path, &body); code != http.StatusServiceUnavailable {
				t.Errorf("got %d, want 503", code)
			}
			if body["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestPipelineFailure(t *testing.T) {
	router, _ := setup(t, &fakePipeline{err: errors.New("list intake folder: denied")})

	if code := do(t, router, "POST", "/api/process", nil); code != http.StatusInternalServerError {
		t.Errorf("got %d, want 500", code)
	}
}

func TestLedgerEntry(t *testing.T) {
	router, led := setup(t, &fakePipeline{})

	key := "lease_Smart_Contracts/lease.pdf"
	if _, err := led.Record(context.Background(), key, true); err != nil {
		t.Fatal(err)
	}

	var entry ledger.Entry
	if code := do(t, router, "GET", "/api/ledger/"+key, &entry); code != http.StatusOK {
		t.Fatalf("ledger entry: got %d", code)
	}
	if entry.Key != key || !entry.Completed || entry.Attempts != 1 {
		t.Errorf("unexpected entry: %+v", entry)
	}

	if code := do(t, router, "GET", "/api/ledger/unknown_1", nil); code != http.StatusNotFound {
		t.Errorf("unknown entry: got %d, want 404", code)
	}
}
