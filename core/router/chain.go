package router

import "github.com/relaykit/relay/core/handler"

// chain builds a single handler from a middleware stack and endpoint.
// An empty stack returns the endpoint unchanged.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint

	// Wrap in reverse order so the first middleware runs outermost.
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}
