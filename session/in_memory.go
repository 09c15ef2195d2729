package session

import (
	"context"
	"sync"

	"github.com/hupe1980/askdocs/message"
)

// InMemoryStore is a volatile Store keeping histories in a process local map.
// It is safe for concurrent access and best suited for tests or ephemeral demo
// servers. Histories are copied on both load and save to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]message.Message
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]message.Message)}
}

// Load returns a copy of the stored history, or nil for an unknown session.
func (s *InMemoryStore) Load(_ context.Context, sessionID string) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]message.Message, len(hist))
	copy(out, hist)
	return out, nil
}

// Save replaces the stored history with a copy of the given one.
func (s *InMemoryStore) Save(_ context.Context, sessionID string, history []message.Message) error {
	stored := make([]message.Message, len(history))
	copy(stored, history)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = stored
	return nil
}
