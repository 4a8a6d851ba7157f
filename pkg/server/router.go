package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/recera/rulesheet/pkg/renderer/html"
	"github.com/recera/rulesheet/pkg/vdom"
	"github.com/rs/zerolog"
)

// HandlerFunc renders a page. A nil node means the handler wrote the
// response itself.
type HandlerFunc func(ctx Ctx) (*vdom.VNode, error)

// APIHandlerFunc returns a value serialized as JSON
type APIHandlerFunc func(ctx Ctx) (any, error)

// Middleware wraps every handler with before/after hooks
type Middleware interface {
	Before(ctx Ctx) error // return ErrStop to abort the chain
	After(ctx Ctx) error  // always called if Before succeeded
}

// ErrStop is returned by Middleware.Before to end the request
var ErrStop = errors.New("stop middleware chain")

// HTTPError carries a status code for a handler error
type HTTPError struct {
	Code int
	Err  error
}

func (e *HTTPError) Error() string { return e.Err.Error() }

func (e *HTTPError) Unwrap() error { return e.Err }

// Errorf returns an HTTPError with the given status
func Errorf(code int, format string, args ...any) error {
	return &HTTPError{Code: code, Err: fmt.Errorf(format, args...)}
}

// routeNode is one path segment in the route tree
type routeNode struct {
	segment   string
	param     bool
	catchAll  bool
	paramName string
	handlers  map[string]HandlerFunc
	children  []*routeNode
}

// Router matches request paths against a segment tree. Segments written
// as [name] capture one path element, [...name] captures the rest.
type Router struct {
	mu         sync.RWMutex
	root       *routeNode
	middleware []Middleware
	log        zerolog.Logger
}

// NewRouter creates an empty router
func NewRouter(log zerolog.Logger) *Router {
	return &Router{root: &routeNode{}, log: log}
}

// Handle registers a page handler for method and path
func (r *Router) Handle(method, path string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.root
	for _, segment := range splitPath(path) {
		node = node.child(segment)
	}
	if node.handlers == nil {
		node.handlers = make(map[string]HandlerFunc)
	}
	node.handlers[method] = handler
}

// HandleAPI registers a JSON handler for method and path
func (r *Router) HandleAPI(method, path string, handler APIHandlerFunc) {
	r.Handle(method, path, wrapAPIHandler(handler))
}

// Use adds global middleware
func (r *Router) Use(middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// Match finds the handler for method and path. allowed lists the methods
// registered for the path when the method does not match.
func (r *Router) Match(method, path string) (handler HandlerFunc, params map[string]string, allowed []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	params = make(map[string]string)
	node, ok := matchNode(r.root, splitPath(path), params)
	if !ok || len(node.handlers) == 0 {
		return nil, params, nil
	}

	if h, ok := node.handlers[method]; ok {
		return h, params, nil
	}
	if method == http.MethodHead {
		if h, ok := node.handlers[http.MethodGet]; ok {
			return h, params, nil
		}
	}

	for m := range node.handlers {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	return nil, params, allowed
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := newContext(w, req, r.log)

	handler, params, allowed := r.Match(req.Method, req.URL.Path)
	if handler == nil {
		if len(allowed) > 0 {
			ctx.SetHeader("Allow", strings.Join(allowed, ", "))
			ctx.Text(http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}
		ctx.Text(http.StatusNotFound, "Not Found")
		return
	}
	ctx.params = params

	defer func() {
		if err := recover(); err != nil {
			ctx.Logger().Error().Interface("panic", err).Msg("panic in handler")
			r.handleError(ctx, fmt.Errorf("internal server error: %v", err))
		}
	}()

	r.mu.RLock()
	middleware := append([]Middleware(nil), r.middleware...)
	r.mu.RUnlock()

	final := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		mw, next := middleware[i], final
		final = func(c Ctx) (*vdom.VNode, error) {
			if err := mw.Before(c); err != nil {
				if errors.Is(err, ErrStop) {
					return nil, nil
				}
				return nil, err
			}
			result, err := next(c)
			if afterErr := mw.After(c); afterErr != nil {
				c.Logger().Error().Err(afterErr).Msg("error in After middleware")
			}
			return result, err
		}
	}

	vnode, err := final(ctx)
	if err != nil {
		r.handleError(ctx, err)
		return
	}
	if vnode == nil {
		return
	}

	out, err := html.RenderToString(vnode)
	if err != nil {
		r.handleError(ctx, fmt.Errorf("failed to render node: %w", err))
		return
	}
	ctx.Write(ctx.StatusCode(), "text/html; charset=utf-8", []byte(out))
}

func (r *Router) handleError(ctx *ctxImpl, err error) {
	code := http.StatusInternalServerError
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
	}

	if code >= 500 {
		ctx.Logger().Error().Err(err).Msg("handler error")
		ctx.Text(code, http.StatusText(code))
		return
	}
	ctx.Logger().Debug().Err(err).Int("status", code).Msg("request rejected")
	ctx.Text(code, err.Error())
}

func (n *routeNode) child(segment string) *routeNode {
	param, catchAll, name := parseSegment(segment)
	for _, c := range n.children {
		if c.param == param && c.catchAll == catchAll && c.segment == segment {
			return c
		}
	}
	c := &routeNode{segment: segment, param: param, catchAll: catchAll, paramName: name}
	n.children = append(n.children, c)
	return c
}

// matchNode tries static children first, then params, then catch-alls
func matchNode(node *routeNode, segments []string, params map[string]string) (*routeNode, bool) {
	if len(segments) == 0 {
		return node, true
	}

	segment, remaining := segments[0], segments[1:]

	for _, child := range node.children {
		if !child.param && !child.catchAll && child.segment == segment {
			if result, ok := matchNode(child, remaining, params); ok {
				return result, true
			}
		}
	}

	for _, child := range node.children {
		if child.param {
			params[child.paramName] = segment
			if result, ok := matchNode(child, remaining, params); ok {
				return result, true
			}
			delete(params, child.paramName)
		}
	}

	for _, child := range node.children {
		if child.catchAll {
			params[child.paramName] = strings.Join(segments, "/")
			return child, true
		}
	}

	return nil, false
}

func parseSegment(segment string) (param, catchAll bool, name string) {
	if !strings.HasPrefix(segment, "[") || !strings.HasSuffix(segment, "]") {
		return false, false, ""
	}
	def := segment[1 : len(segment)-1]
	if strings.HasPrefix(def, "...") {
		return false, true, def[3:]
	}
	return true, false, def
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func wrapAPIHandler(handler APIHandlerFunc) HandlerFunc {
	return func(ctx Ctx) (*vdom.VNode, error) {
		result, err := handler(ctx)
		if err != nil {
			return nil, err
		}
		if err := ctx.JSON(http.StatusOK, result); err != nil {
			return nil, err
		}
		return nil, nil
	}
}
