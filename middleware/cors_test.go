package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaykit/relay/core/handler"
	"github.com/relaykit/relay/core/response"
	"github.com/relaykit/relay/core/router"
	"github.com/relaykit/relay/middleware"
)

func newCORSRouter(cfg middleware.CORSConfig) router.Router[*router.Context] {
	r := router.New[*router.Context]()
	r.Use(middleware.CORSWithConfig[*router.Context](cfg))
	r.Get("/data", func(ctx *router.Context) handler.Response {
		return response.String("payload")
	})
	r.Options("/data", func(ctx *router.Context) handler.Response {
		return response.NoContent()
	})
	return r
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("wildcard_default", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{})

		req := httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Values("Vary"), "Origin")
	})

	t.Run("specific_origin_allowed", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			AllowOrigins: []string{"https://app.example.com"},
		})

		req := httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed_origin_gets_no_cors_headers", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			AllowOrigins: []string{"https://app.example.com"},
		})

		req := httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight_allowed", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			AllowOrigins: []string{"https://app.example.com"},
			MaxAge:       3600,
		})

		req := httptest.NewRequest(http.MethodOptions, "/data", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("preflight_disallowed_method", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			AllowMethods: []string{http.MethodGet},
		})

		req := httptest.NewRequest(http.MethodOptions, "/data", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("preflight_disallowed_origin", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			AllowOrigins: []string{"https://app.example.com"},
		})

		req := httptest.NewRequest(http.MethodOptions, "/data", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("credentials_require_specific_origin", func(t *testing.T) {
		t.Parallel()

		// Wildcard origin: credentials header must never be set.
		r := newCORSRouter(middleware.CORSConfig{AllowCredentials: true})

		req := httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

		// Specific origin: credentials header is set.
		r = newCORSRouter(middleware.CORSConfig{
			AllowOrigins:     []string{"https://app.example.com"},
			AllowCredentials: true,
		})

		req = httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("expose_headers", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			ExposeHeaders: []string{"X-Total-Count", "X-Request-ID"},
		})

		req := httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "X-Total-Count,X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("custom_origin_func", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			AllowOriginFunc: func(origin string) (string, bool) {
				if origin == "https://trusted.example.com" {
					return origin, true
				}
				return "", false
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://trusted.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "https://trusted.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Origin", "https://other.example.com")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		r := newCORSRouter(middleware.CORSConfig{
			Skip: func(ctx handler.Context) bool {
				return ctx.Request().Header.Get("Origin") == ""
			},
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/data", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
