package cryptofolio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/etnz/cryptofolio/metrics"
	"github.com/etnz/cryptofolio/storage"
)

// ErrFollowStopped is returned by Follow when the store closes its
// notifications on its own.
var ErrFollowStopped = errors.New("watchlist notifications stopped")

// Watchlist is the ordered list of tracked tokens, kept in sync with a store.
//
// Every mutation is applied and persisted under the same lock: when it
// returns, memory and store agree, and no reader ever sees a partial
// update. When the store rejects the write the mutation is not applied.
type Watchlist struct {
	store storage.Store

	mu      sync.RWMutex
	tokens  []TrackedToken
	version uint64 // incremented when the set of identifiers may have changed
	written []byte // last payload read from or written to the store
	damaged []byte // malformed payload not saved under BackupKey yet
}

// OpenWatchlist hydrates a watchlist from store.
func OpenWatchlist(ctx context.Context, store storage.Store) (*Watchlist, error) {
	tokens, data, damaged, err := loadTokens(ctx, store)
	if err != nil {
		return nil, err
	}
	w := &Watchlist{store: store, tokens: tokens, written: data}
	if damaged {
		w.damaged = data
	}
	return w, nil
}

// commit persists tokens and makes them the current state. The caller holds
// the write lock.
func (w *Watchlist) commit(ctx context.Context, op string, tokens []TrackedToken, membership bool) error {
	data, err := EncodeTokens(tokens)
	if err != nil {
		return err
	}
	if w.damaged != nil {
		if err := w.store.Set(ctx, BackupKey, w.damaged); err != nil {
			return fmt.Errorf("cannot back up malformed watchlist (%s): %w", op, err)
		}
		log.Printf("malformed watchlist saved under %q", BackupKey)
	}
	if err := w.store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("cannot persist watchlist (%s): %w", op, err)
	}
	w.tokens = tokens
	w.written = data
	w.damaged = nil
	if membership {
		w.version++
	}
	metrics.RecordMutation(op, len(tokens))
	return nil
}

// index returns the position of id in tokens, or -1.
func index(tokens []TrackedToken, id string) int {
	return slices.IndexFunc(tokens, func(t TrackedToken) bool { return t.ID == id })
}

// SetAll replaces the whole list. Repeated identifiers are dropped, the
// first occurrence wins.
func (w *Watchlist) SetAll(ctx context.Context, tokens []TrackedToken) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]TrackedToken, 0, len(tokens))
	for _, t := range tokens {
		if t.ID == "" || index(next, t.ID) >= 0 {
			continue
		}
		next = append(next, t.clone())
	}
	return w.commit(ctx, "set_all", next, true)
}

// Add appends the tokens that are not already listed. Tokens already in the
// list are left untouched, holdings included.
func (w *Watchlist) Add(ctx context.Context, tokens ...TrackedToken) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := slices.Clone(w.tokens)
	for _, t := range tokens {
		if t.ID == "" || index(next, t.ID) >= 0 {
			continue
		}
		next = append(next, t.clone())
	}
	return w.commit(ctx, "add", next, len(next) != len(w.tokens))
}

// Remove deletes the token id. Unknown identifiers are ignored.
func (w *Watchlist) Remove(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(w.tokens), func(t TrackedToken) bool { return t.ID == id })
	return w.commit(ctx, "remove", next, len(next) != len(w.tokens))
}

// UpdateHoldings sets the holdings of token id. Unknown identifiers are
// ignored, negative quantities are rejected.
func (w *Watchlist) UpdateHoldings(ctx context.Context, id string, q Quantity) error {
	if q.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidHoldings, q)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	next := slices.Clone(w.tokens)
	if i := index(next, id); i >= 0 {
		next[i].Holdings = q
	}
	return w.commit(ctx, "update_holdings", next, false)
}

// UpdatePrices overwrites the market data of the listed tokens matching the
// updates. Holdings are always preserved, other updates are ignored.
func (w *Watchlist) UpdatePrices(ctx context.Context, updates ...TrackedToken) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := slices.Clone(w.tokens)
	for _, u := range updates {
		if i := index(next, u.ID); i >= 0 {
			next[i] = next[i].withMarketData(u)
		}
	}
	return w.commit(ctx, "update_prices", next, false)
}

// Merge adds the tokens in added that are absent, then keeps only the
// tokens whose identifier is in selected. Both steps are one mutation.
func (w *Watchlist) Merge(ctx context.Context, added []TrackedToken, selected map[string]bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := slices.Clone(w.tokens)
	for _, t := range added {
		if t.ID == "" || index(next, t.ID) >= 0 {
			continue
		}
		next = append(next, t.clone())
	}
	next = slices.DeleteFunc(next, func(t TrackedToken) bool { return !selected[t.ID] })
	return w.commit(ctx, "merge", next, true)
}

// Tokens returns a copy of the list, in insertion order.
func (w *Watchlist) Tokens() []TrackedToken {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tokens := make([]TrackedToken, len(w.tokens))
	for i, t := range w.tokens {
		tokens[i] = t.clone()
	}
	return tokens
}

// Get returns the token id.
func (w *Watchlist) Get(id string) (TrackedToken, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if i := index(w.tokens, id); i >= 0 {
		return w.tokens[i].clone(), true
	}
	return TrackedToken{}, false
}

// Len returns the number of tokens.
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.tokens)
}

// IDs returns the set of listed identifiers.
func (w *Watchlist) IDs() map[string]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make(map[string]bool, len(w.tokens))
	for _, t := range w.tokens {
		ids[t.ID] = true
	}
	return ids
}

// Version identifies the current membership: it changes whenever tokens
// may have been added or removed.
func (w *Watchlist) Version() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Snapshot values the current list in currency.
func (w *Watchlist) Snapshot(currency string) Snapshot {
	return NewSnapshot(currency, w.Tokens())
}

// Reload re-hydrates the list from the store. It reports whether the state
// changed. A payload identical to the last one read or written is ignored.
func (w *Watchlist) Reload(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tokens, data, damaged, err := loadTokens(ctx, w.store)
	if err != nil {
		return false, err
	}
	if bytes.Equal(data, w.written) {
		return false, nil
	}
	w.damaged = nil
	if damaged {
		w.damaged = data
	}

	if !sameIDs(w.tokens, tokens) {
		w.version++
	}
	w.tokens = tokens
	w.written = data
	metrics.RecordReload(len(tokens))
	return true, nil
}

// sameIDs reports whether a and b list the same identifiers in the same order.
func sameIDs(a, b []TrackedToken) bool {
	return slices.EqualFunc(a, b, func(x, y TrackedToken) bool { return x.ID == y.ID })
}

// Follow applies the changes made to the store by other processes until ctx
// is done. changed, if not nil, is called with the new list after each
// effective reload.
//
// When the store stops sending notifications before ctx is done, Follow
// returns ErrFollowStopped.
func (w *Watchlist) Follow(ctx context.Context, changed func([]TrackedToken)) error {
	events, err := w.store.Watch(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("cannot watch watchlist: %w", err)
	}
	for range events {
		ok, err := w.Reload(ctx)
		if err != nil {
			log.Printf("cannot reload watchlist (ignored): %v", err)
			continue
		}
		if ok && changed != nil {
			changed(w.Tokens())
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrFollowStopped
}
