package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/garrettladley/medibook/internal/notification"
)

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu    sync.Mutex
	items []notification.Notification
	saved bool
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) ([]notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return nil, ErrNotFound
	}
	return slices.Clone(m.items), nil
}

func (m *MemoryStore) Save(_ context.Context, notifications []notification.Notification) error {
	m.mu.Lock()
	m.items = slices.Clone(notifications)
	m.saved = true
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
