// Package storage provides the key-value stores the watchlist is persisted in.
//
// A Store behaves like a browser's local storage: string keys, opaque values,
// and a notification when a key is written by someone else (another process
// sharing the same directory or database).
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("not found")

// Event notifies that a key may have changed. Events are coalesced: several
// writes can produce a single Event, and consumers should re-read the key.
type Event struct {
	Key string
}

// Store is a persistent key-value store with change notifications.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set durably replaces the value stored under key.
	// When Set returns, a subsequent Get from any process returns value.
	Set(ctx context.Context, key string, value []byte) error

	// Watch returns a channel receiving an Event each time key is written,
	// by this process or another one. The channel is closed when ctx is done.
	Watch(ctx context.Context, key string) (<-chan Event, error)
}

// notify sends e to ch unless an event is already pending.
func notify(ch chan Event, e Event) {
	select {
	case ch <- e:
	default:
	}
}
