package health

import (
	"context"
	"log/slog"

	"github.com/relaykit/relay/core/handler"
	"github.com/relaykit/relay/core/logger"
	"github.com/relaykit/relay/core/response"
)

// Check is a single dependency probe. It should respect the context's
// deadline and return a descriptive error on failure.
type Check func(context.Context) error

// Liveness indicates the service process is running. Always returns "ALIVE"
// with 200 OK and performs no dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

// Ping returns HTTP 204 without a body, for high-frequency probes.
func Ping[C handler.Context](C) handler.Response {
	return response.NoContent()
}

// Readiness verifies all service dependencies are functioning. Returns
// "READY" when every check passes and 503 Service Unavailable on the first
// failure, logging the failed check.
//
//	r.Get("/health/ready", health.Readiness[*app.Context](
//		log,
//		db.Ping,
//		cache.Ping,
//	))
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				return response.Error(response.ErrServiceUnavailable)
			}
		}
		return response.String("READY")
	}
}
