// Package response provides response constructors and the structured error
// model used across the framework.
//
// Responses are plain functions that render to the writer, so they compose
// naturally with middleware:
//
//	r.Get("/health", func(ctx *router.Context) handler.Response {
//		return response.JSON(map[string]string{"status": "ok"})
//	})
//
// Errors carry a status code, message, and optional details. Handlers return
// them through response.Error, and the router resolves them via the
// configured error handler:
//
//	return response.Error(response.ErrNotFound.WithMessage("user not found"))
//
// Any plain error reaching the router is converted to a 500 HTTPError with
// the original description preserved in Details, so clients always receive a
// well-formed response.
package response
