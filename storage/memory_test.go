package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if _, err := store.Get(ctx, "WatchList"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	value := []byte(`[{"id":"bitcoin"}]`)
	if err := store.Set(ctx, "WatchList", value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// the store keeps its own copy.
	value[0] = '{'

	got, err := store.Get(ctx, "WatchList")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `[{"id":"bitcoin"}]` {
		t.Errorf("Get() = %s, want %s", got, `[{"id":"bitcoin"}]`)
	}
}

func TestMemory_Watch(t *testing.T) {
	store := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := store.Watch(ctx, "WatchList")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := store.Set(ctx, "other", []byte("x")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, "WatchList", []byte("[]")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	select {
	case ev := <-events:
		if ev.Key != "WatchList" {
			t.Errorf("Event.Key = %q, want %q", ev.Key, "WatchList")
		}
	case <-time.After(time.Second):
		t.Fatal("Watch() did not notify the write")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("Watch() channel still open after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Watch() channel not closed after cancel")
	}
}
