package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/relaykit/relay/core/handler"
)

// group is a node in the registration hierarchy. Its effective path prefix
// is fixed at creation; its middleware chain is resolved lazily at dispatch
// time by walking the parent references, so middleware attached after child
// routes were registered still applies to them.
type group[C handler.Context] struct {
	mux         *mux[C]
	parent      *group[C] // nil at the root
	prefix      string    // full effective prefix, "" at the root
	middlewares []handler.Middleware[C]
}

// Use appends middleware to this node's chain. Unlike route registration,
// middleware may be attached at any time before serving starts.
func (g *group[C]) Use(middlewares ...handler.Middleware[C]) {
	g.middlewares = append(g.middlewares, middlewares...)
}

// Group creates a child registry node. The child's effective prefix is this
// node's prefix extended by the given one, and its middleware nests inside
// this node's chain: parent-before, child-before, handler, child-after,
// parent-after.
func (g *group[C]) Group(prefix string, middlewares ...handler.Middleware[C]) Router[C] {
	if prefix != "" && prefix != "/" {
		if err := validatePattern(prefix); err != nil {
			panic(fmt.Errorf("group prefix: %w", err))
		}
	}
	return &group[C]{
		mux:         g.mux,
		parent:      g,
		prefix:      joinPattern(g.prefix, prefix),
		middlewares: middlewares,
	}
}

// With creates an anonymous child node carrying additional middleware.
func (g *group[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return g.Group("", middlewares...)
}

// Route creates a child node at the given prefix and passes it to fn.
func (g *group[C]) Route(prefix string, fn func(r Router[C])) Router[C] {
	child := g.Group(prefix)
	if fn != nil {
		fn(child)
	}
	return child
}

// Handle registers a handler for the given HTTP method at prefix+pattern.
// Registration failures (malformed pattern, duplicate route, conflicting
// parameter name) are fatal and surface synchronously.
func (g *group[C]) Handle(method, pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, method, pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (g *group[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if seen[method] {
			continue
		}
		seen[method] = true
		g.mux.handle(g, method, pattern, h)
	}
}

// Get registers a handler for GET requests. A HEAD route for the same path
// is registered automatically if absent, so HEAD is never silently
// unsupported.
func (g *group[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (g *group[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (g *group[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodPut, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (g *group[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodDelete, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (g *group[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodPatch, pattern, h)
}

// Head registers a handler for HEAD requests.
func (g *group[C]) Head(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodHead, pattern, h)
}

// Options registers a handler for OPTIONS requests.
func (g *group[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodOptions, pattern, h)
}

// Connect registers a handler for CONNECT requests.
func (g *group[C]) Connect(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodConnect, pattern, h)
}

// Trace registers a handler for TRACE requests.
func (g *group[C]) Trace(pattern string, h handler.HandlerFunc[C]) {
	g.mux.handle(g, http.MethodTrace, pattern, h)
}

// ServeHTTP implements http.Handler by delegating to the shared mux.
func (g *group[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mux.ServeHTTP(w, r)
}

// Routes returns all registered routes.
func (g *group[C]) Routes() []Route {
	return g.mux.routes()
}

// AllowedMethods returns the sorted methods registered at the given path.
func (g *group[C]) AllowedMethods(path string) []string {
	return g.mux.allowedMethods(normalizePath(path))
}

// Lookup resolves a method and path without dispatching.
func (g *group[C]) Lookup(method, path string) (handler.HandlerFunc[C], map[string]string, bool) {
	return g.mux.lookup(method, path)
}

// effectiveMiddleware resolves the full chain for routes owned by this node:
// the root's middleware outermost, this node's innermost. The registry graph
// is walked live, so late-attached middleware is picked up.
func (g *group[C]) effectiveMiddleware() []handler.Middleware[C] {
	if g.parent == nil {
		return g.middlewares
	}
	var mws []handler.Middleware[C]
	var collect func(*group[C])
	collect = func(n *group[C]) {
		if n == nil {
			return
		}
		collect(n.parent)
		mws = append(mws, n.middlewares...)
	}
	collect(g)
	return mws
}

// joinPattern concatenates a group prefix and a route pattern. Both are
// already validated; the root pattern maps to the bare prefix.
func joinPattern(prefix, pattern string) string {
	if prefix == "" {
		if pattern == "" {
			return ""
		}
		return pattern
	}
	if pattern == "" || pattern == "/" {
		return prefix
	}
	return prefix + pattern
}
