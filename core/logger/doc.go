// Package logger provides slog attribute helpers with consistent keys for
// HTTP serving code. Helpers return an empty Attr for zero values, so they
// are safe to pass unconditionally:
//
//	log.Info("request completed",
//		logger.Method(r.Method),
//		logger.Path(r.URL.Path),
//		logger.Error(err), // no-op when err is nil
//	)
package logger
