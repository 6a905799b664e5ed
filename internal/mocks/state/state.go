package state

// Package state contains an in-memory state store double for unit tests.

import (
	"context"
	"sync"

	"github.com/mizan-mobiles/storefront-go/internal/ports"
)

var _ ports.StateStore = (*MemoryStateStore)(nil)

// MemoryStateStore is an in-memory state store. It is safe for concurrent
// use and supports fault injection for testing storage-failure paths.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string][]byte

	// SaveErr/GetErr/DeleteErr, when set, are returned by the corresponding
	// operation instead of touching the map.
	SaveErr   error
	GetErr    error
	DeleteErr error
}

// NewMemoryStateStore creates an empty MemoryStateStore.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{entries: make(map[string][]byte)}
}

func (m *MemoryStateStore) Save(_ context.Context, key string, data []byte) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.entries[key] = cp
	return nil
}

func (m *MemoryStateStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryStateStore) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Has reports whether a key is present.
func (m *MemoryStateStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

// Put seeds an entry directly, bypassing fault injection.
func (m *MemoryStateStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
}
