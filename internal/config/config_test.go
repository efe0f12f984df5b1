package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/counsel/internal/actions"
	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/pkg/render"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
port = 8080

[store]
backend = "memory"
account = "owner@example.com"

[ledger]
backend = "sqlite"
max_attempts = 2

[ledger.database]
driver = "sqlite"
path = "ledger.db"

[model]
provider = "anthropic"
api_key = "key"

[notify]
backend = "log"

[taxonomy]
extensions = ["pdf", ".TXT"]

[monitor]
poll_interval = "30s"
sweep_interval = "10m"

[urgency.windows]
expiration = 21
`

const overlayConfig = `
[server]
port = 9090

[monitor]
poll_interval = "1m"

[urgency.windows]
renewal = 30
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Store.Backend != "memory" {
		t.Errorf("store backend: got %s, want memory", cfg.Store.Backend)
	}
	if cfg.Ledger.Backend != "memory" || cfg.Ledger.MaxAttempts != 1 {
		t.Errorf("ledger: got %s/%d, want memory/1", cfg.Ledger.Backend, cfg.Ledger.MaxAttempts)
	}
	if cfg.Taxonomy.IntakeFolder != "Smart_Contracts" || cfg.Taxonomy.OutputFolder != "protect_your_interests" {
		t.Errorf("taxonomy: %+v", cfg.Taxonomy)
	}
	if cfg.Monitor.SweepEvery() != 60 {
		t.Errorf("sweep every: got %d, want 60", cfg.Monitor.SweepEvery())
	}
	if cfg.Processing.ClassifyExcerpt != 3000 || cfg.Processing.ContextExcerpt != 5000 {
		t.Errorf("processing: %+v", cfg.Processing)
	}
	if cfg.Processing.MaxContractSizeBytes() != 10*1024*1024 {
		t.Errorf("max contract size: %d", cfg.Processing.MaxContractSizeBytes())
	}

	mirror, redline, negotiation := cfg.Render.Formats()
	if mirror != render.FormatDOCX || redline != render.FormatPDF || negotiation != render.FormatDOCX {
		t.Errorf("formats: %s %s %s", mirror, redline, negotiation)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: %v", cfg.ShutdownTimeoutDuration())
	}
	if !cfg.Server.Serving() || cfg.Server.Addr() != "127.0.0.1:8470" {
		t.Errorf("server: serving=%v addr=%s", cfg.Server.Serving(), cfg.Server.Addr())
	}
}

func TestServerDisabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", "[server]\nenabled = false")
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Serving() {
		t.Error("server should be disabled")
	}

	t.Setenv("COUNSEL_SERVER_ENABLED", "true")
	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Server.Serving() {
		t.Error("env override should re-enable the server")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Ledger.Backend != "sqlite" || cfg.Ledger.MaxAttempts != 2 {
		t.Errorf("ledger: %s/%d", cfg.Ledger.Backend, cfg.Ledger.MaxAttempts)
	}
	if cfg.Ledger.Database.Path != "ledger.db" {
		t.Errorf("ledger path: %s", cfg.Ledger.Database.Path)
	}
	if cfg.Store.Account != "owner@example.com" {
		t.Errorf("account: %s", cfg.Store.Account)
	}
	if got := cfg.Taxonomy.Extensions; len(got) != 2 || got[0] != ".pdf" || got[1] != ".txt" {
		t.Errorf("extensions not normalized: %v", got)
	}
	if cfg.Monitor.SweepEvery() != 20 {
		t.Errorf("sweep every: got %d, want 20", cfg.Monitor.SweepEvery())
	}

	policy, err := cfg.Urgency.Policy()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	if policy.Windows[actions.KindExpiration] != 21 {
		t.Errorf("expiration window: %d", policy.Windows[actions.KindExpiration])
	}
	if policy.Windows[actions.KindAuditDue] != 5 {
		t.Errorf("audit window should keep default: %d", policy.Windows[actions.KindAuditDue])
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("COUNSEL_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Monitor.SweepEvery() != 10 {
		t.Errorf("sweep every: got %d, want 10", cfg.Monitor.SweepEvery())
	}
	if cfg.Urgency.Windows["expiration"] != 21 || cfg.Urgency.Windows["renewal"] != 30 {
		t.Errorf("windows not merged: %v", cfg.Urgency.Windows)
	}
}

func TestEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("COUNSEL_SERVER_PORT", "7070")
	t.Setenv("COUNSEL_STORE_BACKEND", "s3")
	t.Setenv("COUNSEL_STORE_S3_BUCKET", "contracts")
	t.Setenv("COUNSEL_LEDGER_MAX_ATTEMPTS", "3")
	t.Setenv("COUNSEL_TAXONOMY_INTAKE_FOLDER", "Inbox")
	t.Setenv("COUNSEL_MONITOR_POLL_INTERVAL", "5m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port: %d", cfg.Server.Port)
	}
	if cfg.Store.Backend != "s3" || cfg.Store.S3.Bucket != "contracts" {
		t.Errorf("store: %+v", cfg.Store)
	}
	if cfg.Ledger.MaxAttempts != 3 {
		t.Errorf("max attempts: %d", cfg.Ledger.MaxAttempts)
	}
	if cfg.Taxonomy.IntakeFolder != "Inbox" {
		t.Errorf("intake folder: %s", cfg.Taxonomy.IntakeFolder)
	}
	if cfg.Monitor.SweepEvery() != 12 {
		t.Errorf("sweep every: %d", cfg.Monitor.SweepEvery())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid shutdown timeout", `shutdown_timeout = "soon"`},
		{"zero drain timeout", "[server]\ndrain_timeout = \"0s\""},
		{"port out of range", "[server]\nport = 70000"},
		{"invalid poll interval", "[monitor]\npoll_interval = \"often\""},
		{"unknown render format", "[render]\nmirror = \"odt\""},
		{"unknown urgency kind", "[urgency.windows]\ntermination = 3"},
		{"nested intake folder", "[taxonomy]\nintake_folder = \"a/b\""},
		{"s3 without bucket", "[store]\nbackend = \"s3\""},
		{"sns without topic", "[notify]\nbackend = \"sns\""},
		{"zero concurrency", "[processing]\nconcurrency = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.content)
			chdir(t, dir)

			if _, err := config.Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
