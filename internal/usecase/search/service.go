package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/domain/document"
	"github.com/kailas-cloud/casesearch/internal/metrics"
)

// DefaultLimit is the result size used when callers pass a non-positive limit.
const DefaultLimit = 5

// Service is the search-and-rank pipeline: retrieve, merge, rerank, truncate.
type Service struct {
	exec   *Executor
	rerank *Reranker
	limit  int
	logger *zap.Logger
}

// New creates a search service. embed may be nil, in which case retrieval order is kept.
func New(repo Repository, embed Embedder, defaultLimit int, logger *zap.Logger) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		exec:   NewExecutor(repo, logger),
		rerank: NewReranker(embed, logger),
		limit:  defaultLimit,
		logger: logger,
	}
}

// DefaultLimit returns the configured default result size.
func (s *Service) DefaultLimit() int {
	return s.limit
}

// Search returns at most limit documents for query, best first.
// The only error is domain.ErrRepositoryUnavailable (wrapped).
func (s *Service) Search(ctx context.Context, query string, limit int) ([]document.Document, error) {
	if limit <= 0 {
		limit = s.limit
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []document.Document{}, nil
	}

	got, err := s.exec.Execute(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	docs := Merge(got.Primary, got.Fallback)
	docs = s.rerank.Rerank(ctx, query, docs)
	if len(docs) > limit {
		docs = docs[:limit]
	}
	if docs == nil {
		docs = []document.Document{}
	}

	metrics.SearchResults.Observe(float64(len(docs)))
	s.logger.Debug("Search completed",
		zap.Int("primary", len(got.Primary)),
		zap.Int("fallback", len(got.Fallback)),
		zap.Int("returned", len(docs)),
	)
	return docs, nil
}
