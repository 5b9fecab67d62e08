package router

import (
	"log/slog"
	"net/http"

	"github.com/relaykit/relay/core/handler"
)

// Option configures a Router during creation.
type Option[C handler.Context] func(*mux[C])

// WithErrorHandler sets a custom error handler for the router.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets the handler invoked when no route matches the
// request path for any method. The default writes a plain 404.
func WithNotFoundHandler[C handler.Context](h handler.HandlerFunc[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.notFound = h
		}
	}
}

// WithMiddleware adds middleware to the router's top-level chain.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(m *mux[C]) {
		m.root.middlewares = append(m.root.middlewares, middlewares...)
	}
}

// WithContextFactory sets a custom context factory for the router.
func WithContextFactory[C handler.Context](f func(http.ResponseWriter, *http.Request, map[string]string) C) Option[C] {
	return func(m *mux[C]) {
		m.newContext = f
	}
}

// WithLogger sets a custom logger for the router.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRouteCacheSize sets the capacity of the route resolution cache.
// Values below 1 keep the default of DefaultRouteCacheSize entries.
func WithRouteCacheSize[C handler.Context](size int) Option[C] {
	return func(m *mux[C]) {
		if size > 0 {
			m.cacheSize = size
		}
	}
}
