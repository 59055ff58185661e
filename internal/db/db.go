package db

import (
	"context"
	"time"
)

// Backend is what every case store offers, Redis family and MongoDB alike.
type Backend interface {
	Pinger
	Searcher
	Seeder
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+path+data triple for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// KVStore is the key-value side of the Redis-family stores, used by the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Searcher runs the two retrieval strategies over a case collection.
type Searcher interface {
	// SupportsTextSearch reports whether SearchText can succeed at all on this backend.
	SupportsTextSearch(ctx context.Context) bool
	// SearchText runs a scored full-text query, best first.
	// Returns ErrTextSearchUnsupported when the backend or collection has no text index.
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	// SearchPattern runs a case-insensitive substring match across q.Fields.
	SearchPattern(ctx context.Context, q *PatternQuery) (*SearchResult, error)
}

// Seeder loads records and prepares the text index.
type Seeder interface {
	EnsureTextIndex(ctx context.Context, collection string, fields []string) error
	Upsert(ctx context.Context, collection string, docs []Record) error
}
