package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/relaykit/relay/core/handler"
	"github.com/relaykit/relay/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger
	// LogLevel sets the level for successful request logs (default: slog.LevelInfo)
	LogLevel slog.Level
	// SlowRequestThreshold marks requests slower than this as warnings (default: 1s, 0 disables)
	SlowRequestThreshold time.Duration
	// Component is added to every log record when non-empty
	Component string
}

// Logging creates a request logging middleware with default configuration.
// Each request is logged once on completion with method, path, status,
// bytes written, and elapsed time.
func Logging[C handler.Context]() handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{})
}

// LoggingWithConfig creates a request logging middleware with custom configuration.
// Status and size are read back from the response writer after the handler and
// any downstream middleware have produced their response.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.SlowRequestThreshold == 0 {
		cfg.SlowRequestThreshold = time.Second
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			response := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				err := response(w, r)
				elapsed := time.Since(start)

				attrs := []slog.Attr{
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.Duration(elapsed),
				}

				if rw, ok := w.(interface {
					Status() int
					Size() int64
				}); ok {
					attrs = append(attrs,
						logger.StatusCode(rw.Status()),
						logger.BytesOut(rw.Size()),
					)
				}

				if id, ok := GetRequestID(ctx); ok {
					attrs = append(attrs, logger.RequestID(id))
				}

				if cfg.Component != "" {
					attrs = append(attrs, logger.Component(cfg.Component))
				}

				level := cfg.LogLevel
				msg := "request completed"

				switch {
				case err != nil:
					level = slog.LevelError
					msg = "request failed"
					attrs = append(attrs, logger.Error(err))
				case cfg.SlowRequestThreshold > 0 && elapsed > cfg.SlowRequestThreshold:
					level = slog.LevelWarn
					msg = "slow request"
				}

				cfg.Logger.LogAttrs(context.Background(), level, msg, attrs...)

				return err
			}
		}
	}
}
