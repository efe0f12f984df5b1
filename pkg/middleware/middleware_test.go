package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/counsel/pkg/middleware"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	mw := middleware.New()
	mw.Use(tag("cors"))
	mw.Use(tag("logger"))

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/status", nil))

	if strings.Join(order, ",") != "cors,logger,handler" {
		t.Errorf("order: got %v", order)
	}
}

func TestCORS(t *testing.T) {
	enabled := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	tests := []struct {
		name       string
		cfg        *middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantCode   int
	}{
		{"disabled", &middleware.CORSConfig{}, "GET", "http://localhost:3000", "", http.StatusOK},
		{"allowed origin", enabled, "GET", "http://localhost:3000", "http://localhost:3000", http.StatusOK},
		{"foreign origin", enabled, "GET", "http://evil.example", "", http.StatusOK},
		{"preflight", enabled, "OPTIONS", "http://localhost:3000", "http://localhost:3000", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(ok))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/contracts", nil)
			req.Header.Set("Origin", tt.origin)
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Max-Age") != "600" {
				t.Errorf("max-age: got %q", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORSConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.example, http://b.example")

	cfg := &middleware.CORSConfig{}
	if err := cfg.Finalize(&middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
	}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled not applied from env")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.example" {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if cfg.MaxAge != 3600 || len(cfg.AllowedMethods) == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestCORSRejectsCredentialedWildcard(t *testing.T) {
	cfg := &middleware.CORSConfig{Enabled: true, Origins: []string{"*"}, AllowCredentials: true}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for credentials with wildcard origin")
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/process", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=503", "uri=/process", "system=http"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}
