package casedoc

import (
	"context"
	"testing"

	"github.com/kailas-cloud/casesearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	supportsTextSearchFn func(ctx context.Context) bool
	searchTextFn         func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchPatternFn      func(ctx context.Context, q *db.PatternQuery) (*db.SearchResult, error)
}

func (m *mockStore) SupportsTextSearch(ctx context.Context) bool {
	if m.supportsTextSearchFn != nil {
		return m.supportsTextSearchFn(ctx)
	}
	return true
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchPattern(ctx context.Context, q *db.PatternQuery) (*db.SearchResult, error) {
	if m.searchPatternFn != nil {
		return m.searchPatternFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

// mockSeeder records writes.
type mockSeeder struct {
	upserted  []db.Record
	indexed   []string
	upsertErr error
	indexErr  error
}

func (m *mockSeeder) EnsureTextIndex(_ context.Context, _ string, fields []string) error {
	m.indexed = fields
	return m.indexErr
}

func (m *mockSeeder) Upsert(_ context.Context, _ string, docs []db.Record) error {
	m.upserted = docs
	return m.upsertErr
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, Config{Collection: "cases"})
	return repo, ms
}

func entries(docs ...db.Record) *db.SearchResult {
	out := &db.SearchResult{Total: len(docs)}
	for _, d := range docs {
		out.Entries = append(out.Entries, db.SearchEntry{Doc: d})
	}
	return out
}
