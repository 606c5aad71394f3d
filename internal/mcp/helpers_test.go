package mcp

// file: internal/mcp/helpers_test.go

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/deezer"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/dkoosis/deezerwidget/internal/tools"
	"github.com/dkoosis/deezerwidget/internal/transport"
	"github.com/dkoosis/deezerwidget/internal/widget"
	"github.com/stretchr/testify/require"
)

const threeRecords = `{"data":[
  {"id":1,"title":"One More Time","duration":320,"artist":{"id":27,"name":"Daft Punk"},"album":{"id":3,"title":"Discovery"}},
  {"id":2,"title":"Aerodynamic","duration":207,"artist":{"id":27,"name":"Daft Punk"}},
  {"id":3,"title":"Digital Love","duration":301}
],"total":3}`

const homepage = "<body><h1>Welcome</h1></body>"

// newTestDispatcher wires the real tools and widget against the given upstream handler.
func newTestDispatcher(t *testing.T, search http.HandlerFunc) *Dispatcher {
	t.Helper()
	return newTestDispatcherWithPage(t, search, homepage)
}

// newTestDispatcherWithPage is newTestDispatcher with a custom widget page body.
func newTestDispatcherWithPage(t *testing.T, search http.HandlerFunc, page string) *Dispatcher {
	t.Helper()
	upstream := httptest.NewServer(search)
	t.Cleanup(upstream.Close)
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(site.Close)

	w := widget.ContentWidget("https://nextjs.org/docs")
	reg := capability.NewRegistry()
	provider := widget.NewProvider(w, site.URL, "/", widget.NewHTTPFetcher(2*time.Second))
	require.NoError(t, reg.Register(provider.Resource()))
	require.NoError(t, reg.Register(tools.ShowContent(w, time.Now)))
	require.NoError(t, reg.Register(tools.DeezerSearch(w, deezer.NewClient(upstream.URL, 100, 5*time.Second))))
	reg.Seal()

	d, err := NewDispatcher(reg, mcptypes.Implementation{Name: "deezerwidget", Version: "test"}, nil)
	require.NoError(t, err)
	return d
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// testClient drives a Server through an in-memory transport.
type testClient struct {
	t       *testing.T
	tr      *transport.InMemoryTransport
	pending map[string]mcptypes.Response
}

func newPair(t *testing.T) *transport.InMemoryTransportPair {
	t.Helper()
	pair := transport.NewInMemoryTransportPair()
	t.Cleanup(func() { _ = pair.ClientTransport.Close() })
	return pair
}

// startServer runs Serve in the background and returns a client plus a
// channel carrying Serve's result.
func startServer(t *testing.T, d *Dispatcher, opts ServerOptions) (*testClient, <-chan error) {
	t.Helper()
	pair := newPair(t)
	srv := NewServer(d, pair.ServerTransport, opts, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()
	return &testClient{t: t, tr: pair.ClientTransport, pending: map[string]mcptypes.Response{}}, done
}

func (c *testClient) sendRaw(frame string) {
	c.t.Helper()
	require.NoError(c.t, c.tr.WriteMessage(context.Background(), []byte(frame)))
}

func (c *testClient) send(id interface{}, method string, params interface{}) {
	c.t.Helper()
	msg := map[string]interface{}{"jsonrpc": "2.0", "method": method}
	if id != nil {
		msg["id"] = id
	}
	if params != nil {
		msg["params"] = params
	}
	b, err := json.Marshal(msg)
	require.NoError(c.t, err)
	c.sendRaw(string(b))
}

// next returns the next response off the wire.
func (c *testClient) next() mcptypes.Response {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	raw, err := c.tr.ReadMessage(ctx)
	require.NoError(c.t, err)
	var resp mcptypes.Response
	require.NoError(c.t, json.Unmarshal(raw, &resp))
	return resp
}

// await returns the response for id, buffering responses to other ids.
func (c *testClient) await(id string) mcptypes.Response {
	c.t.Helper()
	for {
		if resp, ok := c.pending[id]; ok {
			delete(c.pending, id)
			return resp
		}
		resp := c.next()
		key := string(resp.ID)
		if key == "" {
			key = "null"
		}
		c.pending[key] = resp
	}
}

func (c *testClient) call(id int, method string, params interface{}) mcptypes.Response {
	c.t.Helper()
	c.send(id, method, params)
	b, _ := json.Marshal(id)
	return c.await(string(b))
}

func (c *testClient) handshake() {
	c.t.Helper()
	resp := c.call(0, "initialize", map[string]interface{}{
		"protocolVersion": "2025-06-18",
		"clientInfo":      map[string]string{"name": "test-host", "version": "1.0"},
		"capabilities":    map[string]interface{}{},
	})
	require.Nil(c.t, resp.Error)
	c.send(nil, "notifications/initialized", nil)
}

// toolResult decodes a tools/call result as a host would see it.
type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StructuredContent map[string]interface{} `json:"structuredContent"`
	IsError           bool                   `json:"isError"`
	Meta              map[string]interface{} `json:"_meta"`
}

func decodeResult(t *testing.T, resp mcptypes.Response, v interface{}) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error response: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, v))
}
