package router

import (
	"bufio"
	"net"
	"net/http"
)

// responseWriter wraps http.ResponseWriter to track response state through
// the request lifecycle: whether a status has been written, whether the
// connection was hijacked, and whether the response has been finalized.
type responseWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	written     bool
	finalized   bool
	hijacked    bool
	discardBody bool // HEAD requests: body writes are counted but dropped
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (w *responseWriter) WriteHeader(status int) {
	if w.written || w.hijacked {
		return
	}
	w.status = status
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.hijacked {
		return 0, http.ErrHijacked
	}
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	if w.discardBody {
		// Handlers and middleware observe a normal write; only the emitted
		// body is suppressed, honoring the HEAD no-body contract.
		w.size += int64(len(b))
		return len(b), nil
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// Written returns true if a status code has been written.
func (w *responseWriter) Written() bool {
	return w.written
}

// Status returns the written HTTP status code, or 0 if none yet.
func (w *responseWriter) Status() int {
	return w.status
}

// Size returns the number of body bytes written by the handler, including
// bytes suppressed for HEAD requests.
func (w *responseWriter) Size() int64 {
	return w.size
}

// Hijack hands the connection off to the caller and exempts the request
// from normal response finalization.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, ErrHijackNotSupported
	}
	conn, rw, err := hj.Hijack()
	if err == nil {
		w.hijacked = true
	}
	return conn, rw, err
}

// Hijacked returns true once the connection has been handed off.
func (w *responseWriter) Hijacked() bool {
	return w.hijacked
}

// finalize completes the response, writing the default 200 status if the
// handler produced no output. Calling it twice, or after a hijack, is a
// programming error reported to the caller.
func (w *responseWriter) finalize() error {
	if w.hijacked {
		return ErrFinalizeAfterHijack
	}
	if w.finalized {
		return ErrAlreadyFinalized
	}
	w.finalized = true
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return nil
}

// Flush implements http.Flusher if the underlying writer supports it.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
