// Package postgres implements a storage.Store in a PostgreSQL table, so that
// several machines can share one watchlist. Writes are announced with
// NOTIFY and watched with LISTEN.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/etnz/cryptofolio/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// channel is the LISTEN/NOTIFY channel, the payload is the key.
const channel = "folio_kv"

const schema = `CREATE TABLE IF NOT EXISTS folio_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store is a storage.Store backed by a pgxpool.Pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn and creates the table if needed.
func New(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create folio_kv table: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM folio_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value and notifies listeners in the same transaction, so
// that they are only woken once the value is visible.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO folio_kv (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			key, value)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, channel, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Watch holds a dedicated connection listening on the notification channel
// until ctx is done.
func (s *Store) Watch(ctx context.Context, key string) (<-chan storage.Event, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listener connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}

	// the connection stays in LISTEN state, it is closed rather than
	// returned to the pool.
	listener := conn.Hijack()

	ch := make(chan storage.Event, 1)
	go func() {
		defer close(ch)
		defer listener.Close(context.Background())
		for {
			n, err := listener.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("postgres listener stopped: %v", err)
				}
				return
			}
			if n.Payload != key {
				continue
			}
			select {
			case ch <- storage.Event{Key: key}:
			default:
			}
		}
	}()
	return ch, nil
}

var _ storage.Store = (*Store)(nil)
