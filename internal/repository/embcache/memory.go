package embcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/casesearch/internal/db"
)

// MemoryStore is an in-process key-value store for the embedding cache.
// Used when the case store has no key-value API (Mongo) or caching should stay local.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a store whose entries expire after ttl (zero: never).
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	exp := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		exp = ttl
		cleanup = 2 * ttl
	}
	return &MemoryStore{c: gocache.New(exp, cleanup)}
}

// Get returns the cached bytes or db.ErrKeyNotFound.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

// SetWithTTL stores value; a non-positive ttl uses the store default.
func (m *MemoryStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

// Len returns the number of entries, expired ones included until cleanup.
func (m *MemoryStore) Len() int {
	return m.c.ItemCount()
}
