package httpserver

// file: internal/httpserver/sessions.go

import (
	"context"
	"sync"

	"github.com/dkoosis/deezerwidget/internal/mcp/state"
	"github.com/dkoosis/deezerwidget/internal/metrics"
	"github.com/google/uuid"
)

// sessionStore holds the lifecycle machine of every open HTTP session.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*state.Machine
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*state.Machine)}
}

// add stores m under a fresh session id.
func (s *sessionStore) add(m *state.Machine) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = m
	s.mu.Unlock()
	metrics.ActiveSessions.Inc()
	return id
}

func (s *sessionStore) get(id string) (*state.Machine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.sessions[id]
	return m, ok
}

// remove closes and forgets the session. It reports whether it existed.
func (s *sessionStore) remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	m, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	m.Close(ctx)
	metrics.ActiveSessions.Dec()
	return true
}

func (s *sessionStore) closeAll(ctx context.Context) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	for _, id := range ids {
		s.remove(ctx, id)
	}
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
