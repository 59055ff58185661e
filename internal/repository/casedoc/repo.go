package casedoc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/db"
	"github.com/kailas-cloud/casesearch/internal/domain/document"
)

// store is the consumer interface for case retrieval (ISP).
type store interface {
	SupportsTextSearch(ctx context.Context) bool
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchPattern(ctx context.Context, q *db.PatternQuery) (*db.SearchResult, error)
}

// seeder is the write side used by Seed.
type seeder interface {
	EnsureTextIndex(ctx context.Context, collection string, fields []string) error
	Upsert(ctx context.Context, collection string, docs []db.Record) error
}

// Default field sets used when Config leaves them empty.
var (
	DefaultProjection = []string{
		"case_title", "court", "judgment_date", "citation", "bench",
		"issues", "reasoning", "outcome", "search_metadata",
	}
	DefaultTextFields = []string{
		"case_title", "court", "citation", "bench[*]", "issues[*]", "search_metadata.summary",
	}
	DefaultPatternFields = []string{
		"case_title", "issues[*]", "search_metadata.summary", "court", "bench[*]", "citation",
	}
)

// Config selects the collection and the fields each query touches.
type Config struct {
	Collection    string
	Projection    []string
	TextFields    []string
	PatternFields []string
}

// Repo implements usecase/search.Repository over any case store.
type Repo struct {
	store store
	cfg   Config
}

// New creates a case repository.
func New(s store, cfg Config) *Repo {
	if cfg.Collection == "" {
		cfg.Collection = "cases"
	}
	if cfg.Projection == nil {
		cfg.Projection = DefaultProjection
	}
	if len(cfg.TextFields) == 0 {
		cfg.TextFields = DefaultTextFields
	}
	if len(cfg.PatternFields) == 0 {
		cfg.PatternFields = DefaultPatternFields
	}
	return &Repo{store: s, cfg: cfg}
}

// TextSearch runs the scored full-text query, best first, at most limit records.
func (r *Repo) TextSearch(ctx context.Context, query string, limit int) document.Result {
	if !r.store.SupportsTextSearch(ctx) {
		return document.Unsupported(db.ErrTextSearchUnsupported)
	}

	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		Collection: r.cfg.Collection,
		Query:      query,
		Fields:     r.cfg.Projection,
		TopK:       limit,
	})
	if err != nil {
		return failed(fmt.Errorf("text search %s: %w", r.cfg.Collection, err))
	}
	return document.Found(normalize(sr))
}

// PatternSearch runs the case-insensitive substring query across the pattern fields.
func (r *Repo) PatternSearch(ctx context.Context, pattern string, limit int) document.Result {
	sr, err := r.store.SearchPattern(ctx, &db.PatternQuery{
		Collection: r.cfg.Collection,
		Pattern:    pattern,
		Fields:     r.cfg.PatternFields,
		Limit:      limit,
	})
	if err != nil {
		return failed(fmt.Errorf("pattern search %s: %w", r.cfg.Collection, err))
	}
	return document.Found(normalize(sr))
}

// Seed writes the records and prepares the text index.
// A backend without text search still receives the records and is not an error.
func Seed(ctx context.Context, s seeder, cfg Config, docs []document.Document, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = New(nil, cfg).cfg

	records := make([]db.Record, len(docs))
	for i := range docs {
		records[i] = docs[i].Map()
	}
	if err := s.Upsert(ctx, cfg.Collection, records); err != nil {
		return fmt.Errorf("seed %s: %w", cfg.Collection, err)
	}
	err := s.EnsureTextIndex(ctx, cfg.Collection, cfg.TextFields)
	switch {
	case errors.Is(err, db.ErrTextSearchUnsupported):
		logger.Info("Text index skipped, searches will use pattern matching",
			zap.String("collection", cfg.Collection),
			zap.Error(err),
		)
	case err != nil:
		return fmt.Errorf("seed %s: text index: %w", cfg.Collection, err)
	}
	return nil
}

func failed(err error) document.Result {
	if errors.Is(err, db.ErrTextSearchUnsupported) {
		return document.Unsupported(err)
	}
	return document.Unavailable(err)
}

func normalize(sr *db.SearchResult) []document.Document {
	if sr == nil {
		return nil
	}
	docs := make([]document.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		docs = append(docs, document.Normalize(e.Doc))
	}
	return docs
}
