package response

import (
	"errors"
	"net/http"

	"github.com/relaykit/relay/core/handler"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// ConvertError coerces any error into an HTTPError.
//
// An HTTPError passes through unchanged. A plain error that implements
// StatusCode() int is mapped to the predefined error for that status. Any
// other error becomes a 500 with the original error recorded as its cause,
// so the description survives in Details.
func ConvertError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	if sc, ok := err.(statusCode); ok {
		status = sc.StatusCode()
	}

	baseErr, ok := httpErrorsByStatus[status]
	if !ok {
		baseErr = ErrInternalServerError
	}

	return baseErr.WithError(err)
}

// ErrorHandler is the default error handler that returns plain text errors.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := ConvertError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler returns errors as JSON responses with the structured
// error body (code, message, details).
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := ConvertError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
