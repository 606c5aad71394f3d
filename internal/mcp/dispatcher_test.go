package mcp

// file: internal/mcp/dispatcher_test.go

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/mcp/state"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statelessSession(t *testing.T) *state.Machine {
	t.Helper()
	m, err := state.NewStatelessMachine(nil)
	require.NoError(t, err)
	return m
}

func TestNewDispatcher_RequiresRegistry(t *testing.T) {
	_, err := NewDispatcher(nil, mcptypes.Implementation{}, nil)
	assert.Error(t, err)
}

func TestDispatcher_Methods(t *testing.T) {
	d, err := NewDispatcher(capability.NewRegistry(), mcptypes.Implementation{Name: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"initialize",
		"notifications/cancelled",
		"notifications/initialized",
		"ping",
		"resources/list",
		"resources/read",
		"resources/templates/list",
		"tools/call",
		"tools/list",
	}, d.Methods())
}

func TestDispatcher_DecodeFailures(t *testing.T) {
	d := newTestDispatcher(t, respond(http.StatusOK, threeRecords))
	tests := []struct {
		name     string
		frame    string
		wantCode mcperrors.ErrorCode
		wantID   string
	}{
		{name: "not json", frame: `{"jsonrpc"`, wantCode: mcperrors.ErrParseError, wantID: "null"},
		{name: "object id", frame: `{"jsonrpc":"2.0","id":{},"method":"ping"}`, wantCode: mcperrors.ErrInvalidRequest, wantID: "null"},
		{name: "missing method", frame: `{"jsonrpc":"2.0","id":"a"}`, wantCode: mcperrors.ErrInvalidRequest, wantID: `"a"`},
		{name: "method not a string", frame: `{"jsonrpc":"2.0","id":3,"method":5}`, wantCode: mcperrors.ErrInvalidRequest, wantID: "3"},
		{name: "bad version", frame: `{"jsonrpc":"1.0","id":4,"method":"ping"}`, wantCode: mcperrors.ErrInvalidRequest, wantID: "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Handle(context.Background(), statelessSession(t), []byte(tt.frame))
			require.NotNil(t, resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, int(tt.wantCode), resp.Error.Code)

			b, err := json.Marshal(resp)
			require.NoError(t, err)
			var wire map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(b, &wire))
			assert.Equal(t, tt.wantID, string(wire["id"]))
		})
	}
}

func TestDispatcher_StatelessSessionServesTools(t *testing.T) {
	d := newTestDispatcher(t, respond(http.StatusOK, threeRecords))
	resp := d.Handle(context.Background(), statelessSession(t),
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"show_content","arguments":{"name":"Ada"}}}`))
	require.NotNil(t, resp)
	var res toolResult
	decodeResult(t, *resp, &res)
	assert.Equal(t, "Ada", res.Content[0].Text)
}

func TestDispatcher_NotificationHasNoResponse(t *testing.T) {
	d := newTestDispatcher(t, respond(http.StatusOK, threeRecords))
	resp := d.Handle(context.Background(), statelessSession(t),
		[]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
}

func TestDispatcher_ValidationNeverReachesHandler(t *testing.T) {
	calls := 0
	reg := capability.NewRegistry()
	require.NoError(t, reg.Register(&capability.Tool{
		Info:   capability.Info{ID: "counted"},
		Schema: capability.InputSchema{{Name: "n", Type: capability.TypeInteger, Required: true}},
		Handler: func(_ context.Context, _ capability.Arguments) mcptypes.CallToolResult {
			calls++
			return mcptypes.CallToolResult{}
		},
	}))
	reg.Seal()
	d, err := NewDispatcher(reg, mcptypes.Implementation{Name: "x"}, nil)
	require.NoError(t, err)

	resp := d.Handle(context.Background(), statelessSession(t),
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"counted","arguments":{"n":"seven"}}}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(mcperrors.ErrInvalidParams), resp.Error.Code)
	assert.Equal(t, "n", resp.Error.Data["parameter"])
	assert.Equal(t, 0, calls)

	resp = d.Handle(context.Background(), statelessSession(t),
		[]byte(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"counted","arguments":{"n":7}}}`))
	require.Nil(t, resp.Error)
	assert.Equal(t, 1, calls)
	assert.JSONEq(t, `{"content":[],"structuredContent":{}}`, string(resp.Result))
}

func TestDispatcher_RecordsMetrics(t *testing.T) {
	d := newTestDispatcher(t, respond(http.StatusOK, threeRecords))
	ok := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("ping", metrics.OutcomeSuccess))
	unknown := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("unknown", metrics.OutcomeError))

	d.Handle(context.Background(), statelessSession(t), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	d.Handle(context.Background(), statelessSession(t), []byte(`{"jsonrpc":"2.0","id":2,"method":"bogus/method"}`))

	assert.Equal(t, ok+1, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("ping", metrics.OutcomeSuccess)))
	assert.Equal(t, unknown+1, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("unknown", metrics.OutcomeError)))
}

func TestNegotiateProtocolVersion(t *testing.T) {
	for _, v := range mcptypes.SupportedProtocolVersions {
		assert.Equal(t, v, negotiateProtocolVersion(v))
	}
	assert.Equal(t, mcptypes.LatestProtocolVersion, negotiateProtocolVersion(""))
}

func TestInflight(t *testing.T) {
	tracker := newInflight()
	ctx, cancel := context.WithCancel(context.Background())
	done := tracker.track(json.RawMessage(`"abc"`), cancel)
	assert.Equal(t, 1, tracker.len())

	assert.False(t, tracker.cancel(json.RawMessage(`"other"`)))
	assert.True(t, tracker.cancel(json.RawMessage(` "abc" `)))
	assert.Error(t, ctx.Err())

	done()
	assert.Equal(t, 0, tracker.len())
}
