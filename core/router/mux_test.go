package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/relay/core/response"
	"github.com/relaykit/relay/core/router"
)

func TestRouter_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("basic_routing", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/hello", func(ctx *router.Context) handlerResponse {
			return response.String("hello world")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello world", w.Body.String())
	})

	t.Run("root_route", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/", func(ctx *router.Context) handlerResponse {
			return response.String("root")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "root", w.Body.String())
	})

	t.Run("path_params", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/users/:id/posts/:postID", func(ctx *router.Context) handlerResponse {
			return response.String(ctx.Param("id") + ":" + ctx.Param("postID"))
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42/posts/7", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "42:7", w.Body.String())
	})

	t.Run("literal_beats_param", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/users/me", func(ctx *router.Context) handlerResponse {
			return response.String("self")
		})
		r.Get("/users/:id", func(ctx *router.Context) handlerResponse {
			return response.String("user " + ctx.Param("id"))
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
		assert.Equal(t, "self", w.Body.String())

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/99", nil))
		assert.Equal(t, "user 99", w.Body.String())
	})

	t.Run("trailing_slash_normalized", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/users", func(ctx *router.Context) handlerResponse {
			return response.String("users")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "users", w.Body.String())
	})

	t.Run("params_isolated_between_requests", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/items/:id", func(ctx *router.Context) handlerResponse {
			// Mutating the context's params must not leak into the cached
			// resolution shared by later requests.
			got := ctx.Param("id")
			ctx.SetParam("id", "mutated")
			return response.String(got)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/1", nil))
		assert.Equal(t, "1", w.Body.String())

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/1", nil))
		assert.Equal(t, "1", w.Body.String())
	})

	t.Run("cached_resolution_stays_correct", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context](router.WithRouteCacheSize[*router.Context](2))
		r.Get("/a", func(ctx *router.Context) handlerResponse { return response.String("a") })
		r.Get("/b", func(ctx *router.Context) handlerResponse { return response.String("b") })
		r.Get("/c", func(ctx *router.Context) handlerResponse { return response.String("c") })

		// Cycle through more paths than the cache holds, repeatedly.
		for range 3 {
			for _, p := range []string{"/a", "/b", "/c"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
				assert.Equal(t, p[1:], w.Body.String())
			}
		}
	})
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	t.Run("default_404", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/known", func(ctx *router.Context) handlerResponse {
			return response.String("ok")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "404 page not found")
	})

	t.Run("custom_not_found_handler", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context](
			router.WithNotFoundHandler(func(ctx *router.Context) handlerResponse {
				return response.StringWithStatus("nothing here", http.StatusNotFound)
			}),
		)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "nothing here", w.Body.String())
	})

	t.Run("not_found_passes_through_middleware", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Use(headerMiddleware("X-Seen", "yes"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "yes", w.Header().Get("X-Seen"))
	})
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	t.Run("405_with_allow_header", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/resource", func(ctx *router.Context) handlerResponse {
			return response.String("get")
		})
		r.Post("/resource", func(ctx *router.Context) handlerResponse {
			return response.String("post")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/resource", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		// GET auto-registers HEAD, and the set is sorted.
		assert.Equal(t, "GET, HEAD, POST", w.Header().Get("Allow"))
	})

	t.Run("405_passes_through_middleware", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Use(headerMiddleware("X-Seen", "yes"))
		r.Post("/resource", func(ctx *router.Context) handlerResponse {
			return response.String("post")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "yes", w.Header().Get("X-Seen"))
		assert.Equal(t, "POST", w.Header().Get("Allow"))
	})

	t.Run("unknown_http_method", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/resource", func(ctx *router.Context) handlerResponse {
			return response.String("get")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("FROBNICATE", "/resource", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestRouter_Head(t *testing.T) {
	t.Parallel()

	t.Run("implicit_head_for_get", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/page", func(ctx *router.Context) handlerResponse {
			return func(w http.ResponseWriter, req *http.Request) error {
				w.Header().Set("X-Side-Effect", "ran")
				_, err := w.Write([]byte("body content"))
				return err
			}
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/page", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String(), "HEAD response must carry no body")
		assert.Equal(t, "ran", w.Header().Get("X-Side-Effect"), "handler side effects must still run")
	})

	t.Run("explicit_head_overrides_implicit", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/page", func(ctx *router.Context) handlerResponse {
			return response.String("get body")
		})
		r.Head("/page", func(ctx *router.Context) handlerResponse {
			return func(w http.ResponseWriter, req *http.Request) error {
				w.WriteHeader(http.StatusAccepted)
				return nil
			}
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/page", nil))
		assert.Equal(t, http.StatusAccepted, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "get body", w.Body.String())
	})
}

func TestRouter_ErrorHandling(t *testing.T) {
	t.Parallel()

	t.Run("typed_error_from_handler", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/forbidden", func(ctx *router.Context) handlerResponse {
			return response.Error(response.ErrForbidden)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/forbidden", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Forbidden")
	})

	t.Run("untyped_error_becomes_500", func(t *testing.T) {
		t.Parallel()

		var seen error
		r := router.New[*router.Context](
			router.WithErrorHandler(func(ctx *router.Context, err error) {
				seen = err
			}),
		)
		r.Get("/boom", func(ctx *router.Context) handlerResponse {
			return response.Error(errors.New("database exploded"))
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var httpErr response.HTTPError
		require.ErrorAs(t, seen, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, "database exploded", httpErr.Details["cause"])
	})

	t.Run("nil_response_becomes_500", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/nil", func(ctx *router.Context) handlerResponse {
			return nil
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nil", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("custom_error_handler_writes_response", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context](
			router.WithErrorHandler(func(ctx *router.Context, err error) {
				httpErr := response.ConvertError(err)
				ctx.ResponseWriter().WriteHeader(httpErr.Status)
				_, _ = ctx.ResponseWriter().Write([]byte("custom: " + httpErr.Code))
			}),
		)
		r.Get("/conflict", func(ctx *router.Context) handlerResponse {
			return response.Error(response.ErrConflict)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "custom: conflict", w.Body.String())
	})

	t.Run("error_handler_writing_nothing_still_responds", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context](
			router.WithErrorHandler(func(ctx *router.Context, err error) {}),
		)
		r.Get("/silent", func(ctx *router.Context) handlerResponse {
			return response.Error(response.ErrBadRequest)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/silent", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error_handler_panic_falls_back_to_500", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context](
			router.WithErrorHandler(func(ctx *router.Context, err error) {
				panic("handler gone wrong")
			}),
		)
		r.Get("/double-fault", func(ctx *router.Context) handlerResponse {
			return response.Error(response.ErrBadRequest)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/double-fault", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRouter_PanicRecovery(t *testing.T) {
	t.Parallel()

	t.Run("panic_becomes_500", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/panic", func(ctx *router.Context) handlerResponse {
			panic("something broke")
		})

		w := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("panic_in_render_recovered", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/render-panic", func(ctx *router.Context) handlerResponse {
			return func(w http.ResponseWriter, req *http.Request) error {
				panic("render blew up")
			}
		})

		w := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/render-panic", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("error_handler_observes_panic_error", func(t *testing.T) {
		t.Parallel()

		var cause string
		r := router.New[*router.Context](
			router.WithErrorHandler(func(ctx *router.Context, err error) {
				var pe router.PanicError
				if errors.As(err, &pe) {
					cause, _ = pe.Value().(string)
					assert.NotEmpty(t, pe.Stack())
				}
				ctx.ResponseWriter().WriteHeader(http.StatusInternalServerError)
			}),
		)
		r.Get("/panic", func(ctx *router.Context) handlerResponse {
			panic("original value")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "original value", cause)
	})

	t.Run("panic_after_partial_write_leaves_response", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/partial", func(ctx *router.Context) handlerResponse {
			return func(w http.ResponseWriter, req *http.Request) error {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("partial"))
				panic("too late")
			}
		})

		w := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/partial", nil))
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})
}

func TestRouter_Registration(t *testing.T) {
	t.Parallel()

	t.Run("duplicate_route_panics", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/dup", func(ctx *router.Context) handlerResponse { return response.String("a") })

		assert.Panics(t, func() {
			r.Get("/dup", func(ctx *router.Context) handlerResponse { return response.String("b") })
		})
	})

	t.Run("conflicting_param_panics", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/users/:id", func(ctx *router.Context) handlerResponse { return response.String("a") })

		assert.Panics(t, func() {
			r.Get("/users/:name", func(ctx *router.Context) handlerResponse { return response.String("b") })
		})
	})

	t.Run("invalid_pattern_panics", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()

		assert.Panics(t, func() {
			r.Get("no-leading-slash", func(ctx *router.Context) handlerResponse { return response.String("x") })
		})
		assert.Panics(t, func() {
			r.Get("/trailing/", func(ctx *router.Context) handlerResponse { return response.String("x") })
		})
	})

	t.Run("invalid_method_panics", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()

		assert.Panics(t, func() {
			r.Handle("FROBNICATE", "/x", func(ctx *router.Context) handlerResponse { return response.String("x") })
		})
	})

	t.Run("method_registers_multiple_verbs", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Method("/multi", func(ctx *router.Context) handlerResponse {
			return response.String(ctx.Request().Method)
		}, "get", "POST", "post") // case-folded and de-duplicated

		for _, method := range []string{http.MethodGet, http.MethodPost} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(method, "/multi", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, method, w.Body.String())
		}
	})
}

func TestRouter_Introspection(t *testing.T) {
	t.Parallel()

	t.Run("routes_sorted_without_implicit_head", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		h := func(ctx *router.Context) handlerResponse { return response.String("x") }
		r.Get("/b", h)
		r.Post("/a", h)
		r.Get("/a", h)

		assert.Equal(t, []router.Route{
			{Method: http.MethodGet, Pattern: "/a"},
			{Method: http.MethodPost, Pattern: "/a"},
			{Method: http.MethodGet, Pattern: "/b"},
		}, r.Routes())
	})

	t.Run("explicit_head_listed", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		h := func(ctx *router.Context) handlerResponse { return response.String("x") }
		r.Head("/a", h)

		assert.Equal(t, []router.Route{
			{Method: http.MethodHead, Pattern: "/a"},
		}, r.Routes())
	})

	t.Run("allowed_methods", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		h := func(ctx *router.Context) handlerResponse { return response.String("x") }
		r.Get("/res", h)
		r.Put("/res", h)

		assert.Equal(t, []string{"GET", "HEAD", "PUT"}, r.AllowedMethods("/res"))
		assert.Empty(t, r.AllowedMethods("/other"))
	})

	t.Run("lookup", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/users/:id", func(ctx *router.Context) handlerResponse {
			return response.String("user")
		})

		h, params, ok := r.Lookup(http.MethodGet, "/users/42")
		require.True(t, ok)
		assert.NotNil(t, h)
		assert.Equal(t, "42", params["id"])

		_, _, ok = r.Lookup(http.MethodPost, "/users/42")
		assert.False(t, ok)
	})
}

func TestRouter_CustomContext(t *testing.T) {
	t.Parallel()

	t.Run("context_factory", func(t *testing.T) {
		t.Parallel()

		r := router.New[*testContext](
			router.WithContextFactory(newTestContext),
		)
		r.Get("/tenant/:slug", func(ctx *testContext) handlerResponse {
			return response.String(ctx.Tenant())
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenant/acme", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acme", w.Body.String())
	})
}
