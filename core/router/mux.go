package router

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/relaykit/relay/core/handler"
	"github.com/relaykit/relay/core/response"
)

// methodSet lists the HTTP methods accepted for registration and dispatch.
var methodSet = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodDelete:  {},
	http.MethodPatch:   {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

// mux is the dispatch engine shared by all registry nodes of one router.
// It owns the per-method routing trees, the route resolution cache, and the
// request lifecycle: resolve, wrap, execute, recover, finalize.
type mux[C handler.Context] struct {
	root         *group[C]
	trees        map[string]*node[C] // method -> routing tree
	cache        *routeCache[C]
	cacheSize    int
	errorHandler handler.ErrorHandler[C]
	notFound     handler.HandlerFunc[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
}

// newMux creates a new dispatch engine with an empty root registry node.
func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		trees:        make(map[string]*node[C]),
		errorHandler: defaultErrorHandler[C],
		notFound:     defaultNotFound[C],
		cacheSize:    DefaultRouteCacheSize,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	m.root = &group[C]{mux: m}

	for _, opt := range opts {
		opt(m)
	}

	m.cache = newRouteCache[C](m.cacheSize)

	// If no context factory provided, require it for non-default contexts
	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// defaultNotFound writes a plain 404 response.
func defaultNotFound[C handler.Context](ctx C) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return nil
	}
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	// For HEAD the handler runs normally but the emitted body is discarded,
	// so side effects stay visible to middleware.
	ww.discardBody = r.Method == http.MethodHead

	path := normalizePath(r.URL.Path)

	if _, ok := methodSet[r.Method]; !ok {
		ctx := m.newContext(ww, r, nil)
		m.handleError(ctx, ww, response.ErrMethodNotAllowed.WithError(fmt.Errorf("%w: %s", ErrInvalidMethod, r.Method)))
		m.finalizeResponse(ww, r)
		return
	}

	rt, params := m.resolve(r.Method, path)

	var ctx C
	var fn handler.HandlerFunc[C]

	if rt != nil {
		// Params are cloned: the cached map is shared across requests,
		// the context's map belongs to this request alone.
		ctx = m.newContext(ww, r, maps.Clone(params))
		fn = chain(rt.owner.effectiveMiddleware(), rt.handler)
	} else {
		ctx = m.newContext(ww, r, nil)
		if allowed := m.allowedMethods(path); len(allowed) > 0 {
			// 405 still passes through the top-level middleware, with the
			// Allow header set per RFC 7231.
			ww.Header().Set("Allow", strings.Join(allowed, ", "))
			fn = chain(m.root.middlewares, func(C) handler.Response {
				return response.Error(response.ErrMethodNotAllowed)
			})
		} else {
			fn = chain(m.root.middlewares, m.notFound)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				// Can't send an error response anymore, just log the panic.
				m.logger.Error("panic after response written",
					"value", panicErr.value,
					"stack", string(panicErr.stack),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
				)
			} else {
				m.handleError(ctx, ww, panicErr)
			}
		}
		m.finalizeResponse(ww, r)
	}()

	resp := fn(ctx)
	if ww.Hijacked() {
		return
	}
	if resp == nil {
		m.handleError(ctx, ww, ErrNilResponse)
		return
	}
	if err := resp(ww, r); err != nil {
		m.handleError(ctx, ww, err)
	}
}

// handleError resolves a request-time failure into a response. The error is
// coerced to an HTTPError first, so the configured handler always observes a
// status-bearing error; untyped failures become a 500 with the original
// description preserved. If the handler itself fails, a bare 500 is emitted
// so the client always receives a response.
func (m *mux[C]) handleError(ctx C, ww *responseWriter, err error) {
	httpErr := response.ConvertError(err)

	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("error handler panicked",
				"value", p,
				"original_error", httpErr.Message,
				"status", httpErr.Status,
			)
			if !ww.Written() {
				http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	}()

	m.errorHandler(ctx, httpErr)

	// The handler declined to write anything; still guarantee a response.
	if !ww.Written() {
		http.Error(ww, httpErr.Message, httpErr.Status)
	}
}

// finalizeResponse completes the response exactly once per request unless
// the connection was hijacked, in which case the engine performs no further
// writes.
func (m *mux[C]) finalizeResponse(ww *responseWriter, r *http.Request) {
	if ww.Hijacked() {
		return
	}
	if err := ww.finalize(); err != nil {
		m.logger.Error("response finalization failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
}

// resolve memoizes (method, path) resolutions through the route cache,
// walking the tree only on a cache miss. Both matches and no-matches are
// cached; a no-match is stored as an explicit tombstone.
func (m *mux[C]) resolve(method, path string) (*route[C], map[string]string) {
	key := method + " " + path
	if entry, ok := m.cache.lookup(key); ok {
		return entry.route, entry.params
	}

	var rt *route[C]
	var params map[string]string
	if tree, ok := m.trees[method]; ok {
		rt, params = tree.findRoute(splitPath(path))
	}

	m.cache.store(key, cacheEntry[C]{route: rt, params: params})
	return rt, params
}

// lookup is the non-dispatching resolution surface behind Router.Lookup.
func (m *mux[C]) lookup(method, path string) (handler.HandlerFunc[C], map[string]string, bool) {
	rt, params := m.resolve(strings.ToUpper(method), normalizePath(path))
	if rt == nil {
		return nil, nil, false
	}
	return rt.handler, maps.Clone(params), true
}

// allowedMethods reports which methods have a route registered at the given
// path, ignoring the request method. The probe walks literal edges only, so
// it is a best-effort diagnostic rather than a full match.
func (m *mux[C]) allowedMethods(path string) []string {
	segments := splitPath(path)
	methods := make([]string, 0, 2)
	for method, tree := range m.trees {
		if tree.longestLiteralMatch(segments) != nil {
			methods = append(methods, method)
		}
	}
	slices.Sort(methods)
	return methods
}

// routes returns all explicitly registered routes, sorted by pattern then
// method. Auto-registered HEAD twins are omitted.
func (m *mux[C]) routes() []Route {
	var rts []Route
	for _, tree := range m.trees {
		tree.walk(func(rt *route[C]) {
			if rt.implicitHead {
				return
			}
			rts = append(rts, Route{Method: rt.method, Pattern: rt.pattern})
		})
	}
	slices.SortFunc(rts, func(a, b Route) int {
		if c := strings.Compare(a.Pattern, b.Pattern); c != 0 {
			return c
		}
		return strings.Compare(a.Method, b.Method)
	})
	return rts
}

// handle registers a handler in the routing tree on behalf of a registry
// node. Registration errors are fatal: they surface as panics at startup,
// before any request is served.
func (m *mux[C]) handle(owner *group[C], method, pattern string, fn handler.HandlerFunc[C]) {
	if _, ok := methodSet[method]; !ok {
		panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
	}
	if err := validatePattern(pattern); err != nil {
		panic(err)
	}

	full := joinPattern(owner.prefix, pattern)
	if full == "" {
		full = "/"
	}

	tree, ok := m.trees[method]
	if !ok {
		tree = &node[C]{}
		m.trees[method] = tree
	}

	rt := &route[C]{method: method, pattern: full, handler: fn, owner: owner}
	if err := tree.insert(full, rt); err != nil {
		panic(err)
	}

	if method == http.MethodGet {
		m.registerImplicitHead(owner, full, fn)
	}
}

// registerImplicitHead binds a HEAD twin for a GET route if the path has no
// HEAD route yet. An existing HEAD route, explicit or implicit, wins.
func (m *mux[C]) registerImplicitHead(owner *group[C], pattern string, fn handler.HandlerFunc[C]) {
	tree, ok := m.trees[http.MethodHead]
	if !ok {
		tree = &node[C]{}
		m.trees[http.MethodHead] = tree
	}

	rt := &route[C]{method: http.MethodHead, pattern: pattern, handler: fn, owner: owner, implicitHead: true}
	if err := tree.insert(pattern, rt); err != nil && !errors.Is(err, ErrDuplicateRoute) {
		m.logger.Warn("skipping implicit HEAD route", "pattern", pattern, "error", err)
	}
}
