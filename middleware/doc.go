// Package middleware provides reusable HTTP middleware for the relay router.
//
// All middleware follow a common pattern: a zero-configuration constructor
// (e.g. RequestID) and a configurable variant (e.g. RequestIDWithConfig)
// taking a Config struct. Every Config carries an optional Skip predicate
// to bypass the middleware for individual requests.
//
// Middleware wrap both the handler call and the response render, so they
// can observe the request before dispatch and decorate the response after
// the handler ran:
//
//	r := router.New[*router.Context]()
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Use(middleware.Logging[*router.Context]())
//	r.Use(middleware.CORS[*router.Context]())
//
// Included middleware:
//
//   - RequestID: assigns each request a unique ID, exposed via GetRequestID
//     and the X-Request-ID response header
//   - Logging: structured request logging via log/slog with slow-request
//     detection
//   - CORS: Cross-Origin Resource Sharing with preflight handling
package middleware
