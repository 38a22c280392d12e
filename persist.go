package cryptofolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/etnz/cryptofolio/storage"
)

// StorageKey is the store key holding the watchlist.
const StorageKey = "WatchList"

// BackupKey holds the last malformed watchlist found under StorageKey. It is
// written before the first mutation replaces the malformed content.
const BackupKey = "WatchList.bak"

// EncodeTokens serializes a watchlist as a JSON array.
func EncodeTokens(tokens []TrackedToken) ([]byte, error) {
	if tokens == nil {
		tokens = []TrackedToken{}
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("cannot encode watchlist: %w", err)
	}
	return data, nil
}

// DecodeTokens parses a JSON array of tokens.
//
// Entries without an identifier are dropped, and so are repeated
// identifiers (the first one wins), so that the result is always a valid
// watchlist.
func DecodeTokens(data []byte) ([]TrackedToken, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var tokens []TrackedToken
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("cannot decode watchlist: %w", err)
	}

	seen := make(map[string]bool, len(tokens))
	valid := tokens[:0]
	for _, t := range tokens {
		if t.ID == "" || seen[t.ID] {
			log.Printf("warning, dropping invalid or duplicate watchlist entry %q", t.ID)
			continue
		}
		seen[t.ID] = true
		valid = append(valid, t)
	}
	return valid, nil
}

// LoadTokens reads the watchlist from store.
//
// An unset key and malformed content both yield an empty watchlist:
// a damaged store must never prevent the application from starting.
// The raw content is returned with the tokens.
func LoadTokens(ctx context.Context, store storage.Store) ([]TrackedToken, []byte, error) {
	tokens, data, _, err := loadTokens(ctx, store)
	return tokens, data, err
}

// loadTokens is LoadTokens, and also reports whether data was malformed.
func loadTokens(ctx context.Context, store storage.Store) (tokens []TrackedToken, data []byte, damaged bool, err error) {
	data, err = store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("cannot load watchlist: %w", err)
	}

	tokens, err = DecodeTokens(data)
	if err != nil {
		log.Printf("warning, %v: starting with an empty watchlist", err)
		return nil, data, true, nil
	}
	return tokens, data, false, nil
}
