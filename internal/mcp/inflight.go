package mcp

// file: internal/mcp/inflight.go

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// inflight tracks cancel functions of running requests by JSON-RPC id.
type inflight struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newInflight() *inflight {
	return &inflight{cancels: make(map[string]context.CancelFunc)}
}

type inflightKey struct{}

func withInflight(ctx context.Context, t *inflight) context.Context {
	return context.WithValue(ctx, inflightKey{}, t)
}

func inflightFromContext(ctx context.Context) *inflight {
	t, _ := ctx.Value(inflightKey{}).(*inflight)
	return t
}

// track registers cancel under id and returns a func that forgets it.
func (t *inflight) track(id json.RawMessage, cancel context.CancelFunc) func() {
	key := string(bytes.TrimSpace(id))
	t.mu.Lock()
	t.cancels[key] = cancel
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.cancels, key)
		t.mu.Unlock()
		cancel()
	}
}

// cancel cancels the request with id and reports whether one was running.
func (t *inflight) cancel(id json.RawMessage) bool {
	key := string(bytes.TrimSpace(id))
	t.mu.Lock()
	cancel, ok := t.cancels[key]
	delete(t.cancels, key)
	t.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (t *inflight) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cancels)
}
