package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/counsel/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	for _, prefix := range []string{"", "/", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for %q", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	var inner string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		inner = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	var moduleMiddleware bool
	api := module.New("/api", mux)
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			moduleMiddleware = true
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Mount(api)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"module route", "/api/status", http.StatusOK},
		{"trailing slash", "/api/status/", http.StatusOK},
		{"native route", "/healthz", http.StatusNoContent},
		{"unknown", "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if inner != "/status" {
		t.Errorf("inner path: got %q, want /status", inner)
	}
	if !moduleMiddleware {
		t.Error("module middleware not applied")
	}
}

func TestMountDuplicatePanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate prefix")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
