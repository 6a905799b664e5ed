package memstate

// Package memstate provides an in-memory state store for ephemeral runs and
// development. State does not survive process restarts.

import (
	"context"
	"sync"
)

// Store is an in-memory state store safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Save writes the entry for key.
func (s *Store) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.entries[key] = cp
	return nil
}

// Get reads the entry for key. A missing entry returns (nil, nil).
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Delete removes the entry for key; deleting an absent entry is a no-op.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
