// Package router dispatches MCP method calls to their handlers.
package router

// file: internal/mcp/router/router.go

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
)

// Handler handles a request that expects a response.
type Handler func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// NotificationHandler handles a notification; its outcome is never sent to the peer.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// Route maps a method name to its handlers. At least one handler must be set.
type Route struct {
	Method              string
	Handler             Handler
	NotificationHandler NotificationHandler
}

// Router dispatches methods to routes.
type Router interface {
	// AddRoute registers a route. Registering a method twice is an error.
	AddRoute(route Route) error
	// Route runs the handler for method.
	Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error)
	// GetRoutes returns the registered methods, sorted.
	GetRoutes() []string
}

type router struct {
	routes map[string]Route
	mu     sync.RWMutex
	logger logging.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger logging.Logger) Router {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &router{
		routes: make(map[string]Route),
		logger: logger.WithField("component", "mcp_router"),
	}
}

func (r *router) AddRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if route.Method == "" {
		return errors.New("cannot register route with empty method name")
	}
	if route.Handler == nil && route.NotificationHandler == nil {
		return errors.Newf("route for method %q has no handler", route.Method)
	}
	if _, exists := r.routes[route.Method]; exists {
		return errors.Newf("route for method %q already registered", route.Method)
	}
	r.routes[route.Method] = route
	return nil
}

func (r *router) Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error) {
	r.mu.RLock()
	route, exists := r.routes[method]
	r.mu.RUnlock()

	if !exists {
		r.logger.Debug("Method not found in router.", "method", method)
		return nil, mcperrors.NewMethodNotFoundError(method, nil, nil)
	}

	if isNotification {
		switch {
		case route.NotificationHandler != nil:
			return nil, route.NotificationHandler(ctx, params)
		default:
			// A request-only method sent as a notification still runs; the result is dropped.
			_, err := route.Handler(ctx, params)
			return nil, err
		}
	}

	if route.Handler == nil {
		return nil, mcperrors.NewMethodNotFoundError(method, nil,
			map[string]interface{}{"reason": "notification-only method"})
	}
	return route.Handler(ctx, params)
}

func (r *router) GetRoutes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.routes))
	for method := range r.routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}
