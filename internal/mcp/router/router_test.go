package router

// file: internal/mcp/router/router_test.go

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errHandler = errors.New("handler failed")

func echoHandler(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	return params, nil
}

func TestAddRoute(t *testing.T) {
	r := NewRouter(logging.GetNoopLogger())
	require.NoError(t, r.AddRoute(Route{Method: "tools/list", Handler: echoHandler}))

	assert.Error(t, r.AddRoute(Route{Method: "tools/list", Handler: echoHandler}), "duplicate")
	assert.Error(t, r.AddRoute(Route{Method: "", Handler: echoHandler}), "empty method")
	assert.Error(t, r.AddRoute(Route{Method: "x"}), "no handler")

	require.NoError(t, r.AddRoute(Route{Method: "ping", Handler: echoHandler}))
	assert.Equal(t, []string{"ping", "tools/list"}, r.GetRoutes())
}

func TestRoute_Request(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "echo", Handler: echoHandler}))

	out, err := r.Route(context.Background(), "echo", json.RawMessage(`{"a":1}`), false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(out))
}

func TestRoute_MethodNotFound(t *testing.T) {
	r := NewRouter(nil)
	_, err := r.Route(context.Background(), "prompts/list", nil, false)
	var mnf *mcperrors.MethodNotFoundError
	require.True(t, errors.As(err, &mnf))
	code, _, data := mcperrors.MapErrorToJSONRPC(err)
	assert.Equal(t, -32601, code)
	assert.Equal(t, "prompts/list", data["method"])
}

func TestRoute_Notification(t *testing.T) {
	var calls atomic.Int32
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{
		Method: "notifications/initialized",
		NotificationHandler: func(context.Context, json.RawMessage) error {
			calls.Add(1)
			return nil
		},
	}))

	out, err := r.Route(context.Background(), "notifications/initialized", nil, true)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.EqualValues(t, 1, calls.Load())

	_, err = r.Route(context.Background(), "notifications/initialized", nil, false)
	assert.Error(t, err, "notification-only method cannot answer a request")
}

func TestRoute_RequestHandlerAsNotification(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "fail", Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`{}`), errHandler
	}}))

	out, err := r.Route(context.Background(), "fail", nil, true)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, errHandler)
}
