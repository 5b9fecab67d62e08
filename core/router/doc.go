// Package router provides an HTTP router with hierarchical route groups,
// lazily resolved middleware chains, and a bounded route resolution cache.
//
// # Routing
//
// Routes map an HTTP method and a "/"-delimited path pattern to a handler.
// A segment beginning with ":" captures the matching request segment under
// that name. Literal segments always win over parameter segments:
//
//	r := router.New[*router.Context]()
//	r.Get("/page/details", detailsHandler) // matched for /page/details
//	r.Get("/page/:id", pageHandler)        // matched for /page/42, Param("id") == "42"
//
// Registering a GET route also registers a HEAD route for the same path if
// absent; HEAD responses run the full handler with the body suppressed.
//
// Repeated resolutions of the same (method, path) are served from a bounded
// LRU cache; unknown paths are cached too, so repeated misses stay cheap.
//
// # Groups and middleware
//
// Groups compose path prefixes and middleware hierarchically:
//
//	api := r.Group("/api", authMiddleware)
//	api.Get("/users", listUsers)
//	api.Use(auditMiddleware) // still applies to /api/users
//
// The effective chain is resolved when a request is dispatched, not when the
// route is registered, so middleware attached to a group after its routes
// still wraps them. Per request, execution is strictly sequential:
// outer-before, inner-before, handler, inner-after, outer-after.
//
// # Errors and recovery
//
// Handlers surface typed failures by returning response.Error(err); panics
// are recovered and coerced to a 500 with the panic description preserved.
// Both paths flow through the configurable error handler, and a failure in
// the error handler itself falls back to a bare 500, so the client always
// receives a response unless the handler hijacked the connection.
//
// # Concurrency
//
// Registration is startup-only: the routing trees and registry graph must
// not be mutated once serving starts. Requests are handled independently and
// share no mutable state besides the route cache, which synchronizes
// internally.
package router
