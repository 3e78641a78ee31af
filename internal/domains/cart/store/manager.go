package store

import (
	"fmt"
	"sync"

	"saloncart-backend/internal/domains/cart/model"
	"saloncart-backend/pkg/kv"
)

// Manager is the composition-root registry of cart stores, one per
// persistence slot. All mutation for a slot funnels through the single
// Store instance the manager hands out, so the read-modify-write against
// the backend never races within one process.
type Manager struct {
	mu      sync.Mutex
	backend kv.Store
	stores  map[string]*Store
	opts    []Option
}

// NewManager creates a manager on top of one persistence backend.
// Options are forwarded to every store it creates.
func NewManager(backend kv.Store, opts ...Option) *Manager {
	return &Manager{
		backend: backend,
		stores:  make(map[string]*Store),
		opts:    opts,
	}
}

// ForSession resolves the store for an anonymous session id
func (m *Manager) ForSession(sessionID string) *Store {
	return m.ForKey(fmt.Sprintf(model.StorageKeyBySession, sessionID))
}

// ForKey resolves the store bound to a raw persistence key, hydrating it
// on first use.
func (m *Manager) ForKey(key string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[key]; ok {
		return s
	}
	s := New(m.backend, key, m.opts...)
	m.stores[key] = s
	return s
}
