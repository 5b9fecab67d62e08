// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: process is running, no dependency checks
//   - Readiness: all dependencies are available
//   - Ping: returns 204 for minimal overhead
//
// Usage:
//
//	r.Get("/health/live", health.Liveness[*app.Context])
//	r.Get("/health/ready", health.Readiness[*app.Context](log, db.Ping))
//	r.Get("/ping", health.Ping[*app.Context])
//
// Dependency checks follow the func(context.Context) error signature, so
// methods like sql.DB.PingContext adapt with a one-line closure.
package health
