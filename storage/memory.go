package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Store. Several watchlists sharing one Memory behave
// like several processes sharing one directory.
type Memory struct {
	mu       sync.RWMutex
	values   map[string][]byte
	watchers map[string][]chan Event
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values:   make(map[string][]byte),
		watchers: make(map[string][]chan Event),
	}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value and notifies the watchers of key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = slices.Clone(value)
	for _, ch := range m.watchers[key] {
		notify(ch, Event{Key: key})
	}
	return nil
}

// Watch registers a watcher for key until ctx is done.
func (m *Memory) Watch(ctx context.Context, key string) (<-chan Event, error) {
	ch := make(chan Event, 1)

	m.mu.Lock()
	m.watchers[key] = append(m.watchers[key], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		m.watchers[key] = slices.DeleteFunc(m.watchers[key], func(c chan Event) bool { return c == ch })
		close(ch)
	}()
	return ch, nil
}

var _ Store = (*Memory)(nil)
