// Package handler defines the shared contracts between the router and
// application code: the request context interface, handler and middleware
// function types, and the response rendering function.
//
// Handlers are generic over the context type, so applications can extend the
// default context with their own request-scoped dependencies while keeping
// full type safety:
//
//	func getUser(ctx *router.Context) handler.Response {
//		id := ctx.Param("id")
//		return response.JSON(map[string]string{"id": id})
//	}
//
// Middleware wraps handlers and composes in registration order, outermost
// first:
//
//	func auth[C handler.Context](next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//		return func(ctx C) handler.Response {
//			if ctx.Request().Header.Get("Authorization") == "" {
//				return response.Fail(response.ErrUnauthorized)
//			}
//			return next(ctx)
//		}
//	}
package handler
