package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/relaykit/relay/core/handler"
	"github.com/relaykit/relay/core/response"
)

var (
	// Registration errors; they surface synchronously at startup and are
	// never auto-recovered.
	ErrDuplicateRoute       = errors.New("duplicate route")
	ErrConflictingParamName = errors.New("conflicting parameter name")
	ErrInvalidPattern       = errors.New("invalid route path pattern")
	ErrInvalidMethod        = errors.New("invalid http method")

	// Mux errors
	ErrNoContextFactory    = errors.New("no context factory provided")
	ErrNilResponse         = errors.New("nil response")
	ErrHijackNotSupported  = errors.New("underlying response writer does not support hijacking")
	ErrAlreadyFinalized    = errors.New("response already finalized")
	ErrFinalizeAfterHijack = errors.New("finalize after hijack")
)

// defaultErrorHandler writes the error's status and message as a plain text
// body. Custom handlers always observe an HTTPError: the mux coerces plain
// failures to a 500 before invoking the handler.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()

	// Prevent double-writing responses which causes HTTP protocol errors
	if ww, ok := w.(*responseWriter); ok && ww.Written() {
		return
	}

	httpErr := response.ConvertError(err)
	http.Error(w, httpErr.Message, httpErr.Status)
}

// PanicError allows external error handlers to detect recovered panics and
// access the original panic value and stack trace.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

// panicError is the private implementation of PanicError.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with panics raised with error values.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
