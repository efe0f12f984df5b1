// Package module mounts single-segment path prefixes onto handlers that carry their own
// middleware stacks, with a native mux for everything else (health probes).
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/counsel/pkg/middleware"
)

// Module serves one path prefix. Requests reach the inner handler with the prefix
// removed, so "/api/status" is routed as "/status".
type Module struct {
	prefix     string
	inner      http.Handler
	middleware middleware.System
}

// New creates a Module for prefix, which must be a single segment such as "/api".
// It panics on any other shape.
func New(prefix string, inner http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		inner:      inner,
		middleware: middleware.New(),
	}
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module's middleware stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Handler returns the inner handler wrapped in the middleware stack.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.inner)
}

// Serve strips the module prefix and dispatches through the middleware stack.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	stripped := req.Clone(req.Context())
	stripped.URL.Path = strings.TrimPrefix(req.URL.Path, m.prefix)
	if stripped.URL.Path == "" {
		stripped.URL.Path = "/"
	}
	stripped.URL.RawPath = ""
	m.Handler().ServeHTTP(w, stripped)
}

// Router dispatches on the first path segment to a mounted Module, falling back to a
// native ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount routes m's prefix to m. It panics if the prefix is already mounted.
func (r *Router) Mount(m *Module) {
	if _, exists := r.modules[m.prefix]; exists {
		panic(fmt.Sprintf("module prefix already mounted: %s", m.prefix))
	}
	r.modules[m.prefix] = m
}

// ServeHTTP trims one trailing slash, then dispatches by first path segment.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	segment, _, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
	if m, ok := r.modules["/"+segment]; ok {
		m.Serve(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case len(prefix) == 1 || strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
