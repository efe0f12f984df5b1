// Package routes declares HTTP routes as nested prefix groups and registers them on a
// ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler. Pattern is relative to the
// enclosing group's prefix and may be empty to match the prefix itself.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group collects routes and child groups under a shared prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups, including nested children, to mux. A route
// without a method is registered for GET.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		method := r.Method
		if method == "" {
			method = http.MethodGet
		}
		path := prefix + r.Pattern
		if path == "" {
			path = "/"
		}
		mux.HandleFunc(method+" "+path, r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
