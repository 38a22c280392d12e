package cryptofolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/etnz/cryptofolio/storage"
	"github.com/shopspring/decimal"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "usd") }

// tok is a helper for test to create a token with a price and holdings.
func tok(id string, price, holdings float64) TrackedToken {
	return TrackedToken{
		ID:           id,
		Name:         "Token " + id,
		Symbol:       id,
		CurrentPrice: decimal.NewFromFloat(price),
		Holdings:     Q(holdings),
	}
}

// ids returns the identifiers of tokens, in order.
func ids(tokens []TrackedToken) []string {
	r := make([]string, len(tokens))
	for i, t := range tokens {
		r[i] = t.ID
	}
	return r
}

// newTestWatchlist opens a watchlist on a fresh memory store, holding tokens.
func newTestWatchlist(t *testing.T, tokens ...TrackedToken) (*Watchlist, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	w, err := OpenWatchlist(context.Background(), store)
	if err != nil {
		t.Fatalf("OpenWatchlist() error = %v", err)
	}
	if len(tokens) > 0 {
		if err := w.SetAll(context.Background(), tokens); err != nil {
			t.Fatalf("SetAll() error = %v", err)
		}
	}
	return w, store
}

// failingStore is a store whose writes always fail.
type failingStore struct{ storage.Memory }

func (*failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

// closingStore is a store whose notifications stop right away.
type closingStore struct{ *storage.Memory }

func (closingStore) Watch(context.Context, string) (<-chan storage.Event, error) {
	ch := make(chan storage.Event)
	close(ch)
	return ch, nil
}

// fakeCatalog serves a fixed list of tokens, page by page.
//
// When gate is not nil, every call blocks until a value is received from it.
// The i-th call waits on gates[i] instead, when there is one.
type fakeCatalog struct {
	tokens []TrackedToken
	err    error
	gate   chan struct{}
	gates  []chan struct{}

	mu    sync.Mutex
	calls []int // requested pages
}

// newFakeCatalog returns a catalog of n tokens named c1 to cn.
func newFakeCatalog(n int) *fakeCatalog {
	c := &fakeCatalog{}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("c%d", i)
		c.tokens = append(c.tokens, tok(id, float64(i), 0))
	}
	return c
}

func (c *fakeCatalog) Markets(ctx context.Context, page, perPage int) ([]TrackedToken, error) {
	c.mu.Lock()
	c.calls = append(c.calls, page)
	gate := c.gate
	if i := len(c.calls) - 1; i < len(c.gates) {
		gate = c.gates[i]
	}
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	start := min((page-1)*perPage, len(c.tokens))
	end := min(start+perPage, len(c.tokens))
	return c.tokens[start:end], nil
}

func (c *fakeCatalog) Calls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.calls...)
}
