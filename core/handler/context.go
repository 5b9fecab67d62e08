package handler

import (
	"context"
	"net/http"
)

// Context defines the contract for request contexts in the framework.
// It carries the request, the response writer, extracted path parameters,
// and a per-request key/value bag that is invisible to other requests.
type Context interface {
	context.Context

	// Request returns the HTTP request being handled.
	Request() *http.Request

	// ResponseWriter returns the writer for the response.
	ResponseWriter() http.ResponseWriter

	// Param returns the value of the named path parameter, or "" if absent.
	Param(key string) string

	// SetValue stores a request-scoped value retrievable via Value.
	SetValue(key, val any)
}
