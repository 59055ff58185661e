// Package valkey adapts the Redis store to Valkey with valkey-search, which has no
// TEXT fields: scored text search is reported unsupported and callers fall back to
// pattern search over SCAN + JSON.MGET.
package valkey

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/casesearch/internal/db"
	"github.com/kailas-cloud/casesearch/internal/db/redis"
)

// Compile-time checks: Store is a case backend and the embedding cache KV store.
var (
	_ db.Backend = (*Store)(nil)
	_ db.KVStore = (*Store)(nil)
)

// Config holds connection parameters for a Valkey store.
type Config = redis.Config

// Store implements db.Backend for Valkey. Everything except text search is shared with Redis.
type Store struct {
	*redis.Store
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	s, err := redis.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Store: s}, nil
}

func newStore(c rueidis.Client) *Store {
	return &Store{Store: redis.NewStoreForTest(c)}
}

// SupportsTextSearch returns false: valkey-search has no TEXT fields or BM25 scoring.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return false
}

// SearchText always reports ErrTextSearchUnsupported without a round-trip.
func (s *Store) SearchText(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
	return nil, &db.Error{Op: db.OpSearch, Err: db.ErrTextSearchUnsupported}
}

// EnsureTextIndex reports ErrTextSearchUnsupported; pattern search needs no index.
func (s *Store) EnsureTextIndex(_ context.Context, collection string, _ []string) error {
	return fmt.Errorf("collection %s: %w", collection, db.ErrTextSearchUnsupported)
}
