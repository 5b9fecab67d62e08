package router

import (
	"net/http"

	"github.com/relaykit/relay/core/handler"
)

// Router is the main routing interface for handling HTTP requests.
// It supports middleware chaining, hierarchical route groups with path
// prefixes, and lazy middleware resolution: middleware attached to a group
// after its routes were registered still applies to those routes.
type Router[C handler.Context] interface {
	http.Handler
	Routes

	// HTTP method handlers
	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])
	Head(pattern string, h handler.HandlerFunc[C])
	Options(pattern string, h handler.HandlerFunc[C])
	Connect(pattern string, h handler.HandlerFunc[C])
	Trace(pattern string, h handler.HandlerFunc[C])

	// Generic handlers
	Handle(method, pattern string, h handler.HandlerFunc[C])
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)

	// Middleware
	Use(middlewares ...handler.Middleware[C])
	With(middlewares ...handler.Middleware[C]) Router[C]

	// Grouping
	Group(prefix string, middlewares ...handler.Middleware[C]) Router[C]
	Route(prefix string, fn func(r Router[C])) Router[C]

	// Lookup resolves a method and path to the bound handler and captured
	// path parameters without dispatching.
	Lookup(method, path string) (handler.HandlerFunc[C], map[string]string, bool)
}

// Routes provides route introspection capabilities for debugging and monitoring.
type Routes interface {
	// Routes returns all registered routes.
	Routes() []Route

	// AllowedMethods returns the sorted, de-duplicated set of methods with
	// a route registered at the given path, ignoring the request method.
	AllowedMethods(path string) []string
}

// Route describes a single route in the router with its HTTP method and pattern.
type Route struct {
	Method  string
	Pattern string
}

// New creates a new router with the given options.
// The router supports generic context types for type-safe request handling.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...).root
}
