package router_test

import (
	"net/http"

	"github.com/relaykit/relay/core/handler"
	"github.com/relaykit/relay/core/router"
)

// handlerResponse shortens handler.Response in test bodies.
type handlerResponse = handler.Response

// headerMiddleware sets a response header before delegating, so tests can
// verify that a request passed through a particular chain link.
func headerMiddleware(key, value string) handler.Middleware[*router.Context] {
	return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			ctx.ResponseWriter().Header().Set(key, value)
			return next(ctx)
		}
	}
}

// traceMiddleware appends markers to a shared trace around the inner call,
// recording the middleware execution order.
func traceMiddleware(trace *[]string, name string) handler.Middleware[*router.Context] {
	return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			*trace = append(*trace, name+":before")
			resp := next(ctx)
			*trace = append(*trace, name+":after")
			return resp
		}
	}
}

// testContext is a custom request context extending the default one with a
// domain accessor, exercising the generic context factory path.
type testContext struct {
	*router.Context
}

func newTestContext(w http.ResponseWriter, r *http.Request, params map[string]string) *testContext {
	return &testContext{Context: router.NewContext(w, r, params)}
}

func (c *testContext) Tenant() string {
	return c.Param("slug")
}
