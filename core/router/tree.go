package router

import (
	"fmt"
	"strings"

	"github.com/relaykit/relay/core/handler"
)

// route is the value bound at a tree node. It pairs a handler with the
// registry group that owns it, so the effective middleware chain is resolved
// lazily at dispatch time rather than frozen at registration time.
type route[C handler.Context] struct {
	method  string
	pattern string
	handler handler.HandlerFunc[C]
	owner   *group[C]

	// implicitHead marks the HEAD twin auto-registered alongside a GET
	// route. An explicit HEAD registration at the same path replaces it.
	implicitHead bool
}

// node is a single path segment in the routing tree.
//
// Invariants: at most one literal child per exact segment text, and at most
// one parameter child whose capture name is fixed by the first insertion.
type node[C handler.Context] struct {
	segment  string
	isParam  bool
	children map[string]*node[C] // literal children by segment text
	param    *node[C]            // parameter child, nil if none
	route    *route[C]           // bound value, nil for pass-through nodes
}

// insert walks or creates nodes for the pattern's segments and binds rt at
// the final node. The pattern must already be validated.
func (n *node[C]) insert(pattern string, rt *route[C]) error {
	cur := n
	for _, seg := range splitPath(pattern) {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if name == "" {
				return fmt.Errorf("%w: %q has an unnamed parameter segment", ErrInvalidPattern, pattern)
			}
			if cur.param == nil {
				cur.param = &node[C]{segment: name, isParam: true}
			} else if cur.param.segment != name {
				return fmt.Errorf("%w: %q conflicts with existing parameter %q", ErrConflictingParamName, name, cur.param.segment)
			}
			cur = cur.param
			continue
		}

		child, ok := cur.children[seg]
		if !ok {
			child = &node[C]{segment: seg}
			if cur.children == nil {
				cur.children = make(map[string]*node[C])
			}
			cur.children[seg] = child
		}
		cur = child
	}

	if cur.route != nil {
		if cur.route.implicitHead && !rt.implicitHead {
			// Explicit HEAD registration overrides the auto-registered twin.
			cur.route = rt
			return nil
		}
		return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, rt.method, pattern)
	}
	cur.route = rt
	return nil
}

// findRoute resolves the given path segments to a bound route. Literal
// children are tried before the parameter child at every level; the search
// backtracks into the parameter branch when no literal branch yields a full
// match. Captured parameters accumulate as the recursion unwinds.
func (n *node[C]) findRoute(segments []string) (*route[C], map[string]string) {
	if len(segments) == 0 {
		if n.route != nil {
			return n.route, nil
		}
		return nil, nil
	}

	head, rest := segments[0], segments[1:]

	if child, ok := n.children[head]; ok {
		if rt, params := child.findRoute(rest); rt != nil {
			return rt, params
		}
	}

	if n.param != nil {
		if rt, params := n.param.findRoute(rest); rt != nil {
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[n.param.segment] = head
			return rt, params
		}
	}

	return nil, nil
}

// longestLiteralMatch returns the route bound to the deepest node reachable
// by walking literal edges only, tolerating unconsumed trailing segments.
// It is a best-effort probe used for "methods available at this path"
// diagnostics, not for dispatch.
func (n *node[C]) longestLiteralMatch(segments []string) *route[C] {
	best := n.route
	cur := n
	for _, seg := range segments {
		child, ok := cur.children[seg]
		if !ok {
			break
		}
		cur = child
		if cur.route != nil {
			best = cur.route
		}
	}
	return best
}

// walk visits every bound route in the subtree.
func (n *node[C]) walk(visit func(*route[C])) {
	if n.route != nil {
		visit(n.route)
	}
	for _, child := range n.children {
		child.walk(visit)
	}
	if n.param != nil {
		n.param.walk(visit)
	}
}

// normalizePath canonicalizes a request path: empty becomes "/", a leading
// "/" is ensured, and trailing slashes are stripped except at the root.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}

// splitPath splits a normalized path into its non-empty segments.
// The root path has no segments.
func splitPath(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	raw := strings.Split(path[1:], "/")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// validatePattern checks a registration pattern: it must start with "/" and
// must not end with "/" unless it is the root pattern.
func validatePattern(pattern string) error {
	if pattern == "" || pattern[0] != '/' {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	if len(pattern) > 1 && strings.HasSuffix(pattern, "/") {
		return fmt.Errorf("%w: %q must not end with '/'", ErrInvalidPattern, pattern)
	}
	return nil
}
