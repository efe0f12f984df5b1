package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/counsel/pkg/routes"
)

func TestRegisterNestedGroups(t *testing.T) {
	var hit string
	handle := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hit = name
			if key := r.PathValue("key"); key != "" {
				hit += ":" + key
			}
		}
	}

	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/contracts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: handle("list")},
		},
		Children: []routes.Group{
			{
				Prefix: "/ledger",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{key...}", Handler: handle("entry")},
				},
			},
		},
	})

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/contracts", "list"},
		{"GET", "/contracts/ledger/lease.pdf_123", "entry:lease.pdf_123"},
		{"POST", "/contracts", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			hit = ""
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))
			if hit != tt.want {
				t.Errorf("got %q, want %q", hit, tt.want)
			}
		})
	}
}

func TestRegisterDefaultsToGet(t *testing.T) {
	var hit bool
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Routes: []routes.Route{
			{Pattern: "/status", Handler: func(w http.ResponseWriter, r *http.Request) { hit = true }},
		},
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/status", nil))
	if !hit {
		t.Error("route without a method should serve GET")
	}
}
