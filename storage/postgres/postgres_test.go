package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/cryptofolio/storage"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestStore starts a PostgreSQL container and connects a Store to it.
func setupTestStore(t *testing.T) (string, *Store) {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("folio"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	store, err := New(ctx, dsn)
	require.NoError(t, err, "failed to connect store")
	t.Cleanup(store.Close)

	return dsn, store
}

func TestStore_GetSet(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "WatchList")
	require.True(t, errors.Is(err, storage.ErrNotFound), "Get() error = %v, want ErrNotFound", err)

	require.NoError(t, store.Set(ctx, "WatchList", []byte(`[]`)))
	require.NoError(t, store.Set(ctx, "WatchList", []byte(`[{"id":"solana"}]`)))

	got, err := store.Get(ctx, "WatchList")
	require.NoError(t, err)
	require.Equal(t, `[{"id":"solana"}]`, string(got))
}

func TestStore_WatchAcrossConnections(t *testing.T) {
	dsn, watcher := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// a second store plays the other machine.
	writer, err := New(ctx, dsn)
	require.NoError(t, err)
	defer writer.Close()

	events, err := watcher.Watch(ctx, "WatchList")
	require.NoError(t, err)

	require.NoError(t, writer.Set(ctx, "unrelated", []byte(`x`)))
	require.NoError(t, writer.Set(ctx, "WatchList", []byte(`["b"]`)))

	select {
	case ev := <-events:
		require.Equal(t, "WatchList", ev.Key)
	case <-time.After(10 * time.Second):
		t.Fatal("Watch() did not notify the write")
	}

	got, err := watcher.Get(ctx, "WatchList")
	require.NoError(t, err)
	require.Equal(t, `["b"]`, string(got))
}
