package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/domain/document"
	"github.com/kailas-cloud/casesearch/internal/metrics"
)

// Retrieval holds the two candidate lists, unmerged.
type Retrieval struct {
	Primary  []document.Document
	Fallback []document.Document
}

// Executor runs the primary text query and, when needed, the pattern fallback.
type Executor struct {
	repo   Repository
	logger *zap.Logger
}

// NewExecutor creates an executor.
func NewExecutor(repo Repository, logger *zap.Logger) *Executor {
	return &Executor{repo: repo, logger: logger}
}

// Execute retrieves candidates for query. An empty query touches no store.
// The fallback runs when text search is unsupported or returned fewer than limit records.
// An unreachable store on either query yields domain.ErrRepositoryUnavailable.
func (e *Executor) Execute(ctx context.Context, query string, limit int) (Retrieval, error) {
	if query == "" {
		return Retrieval{}, nil
	}

	primary := e.repo.TextSearch(ctx, query, limit)

	var reason string
	switch primary.Status {
	case document.StatusUnavailable:
		return Retrieval{}, fmt.Errorf("%w: %w", domain.ErrRepositoryUnavailable, primary.Err)
	case document.StatusUnsupported:
		reason = metrics.FallbackUnsupported
		e.logger.Debug("Text search unsupported, using pattern search", zap.Error(primary.Err))
	default:
		if len(primary.Documents) >= limit {
			return Retrieval{Primary: primary.Documents}, nil
		}
		reason = metrics.FallbackUnderfilled
	}

	metrics.SearchFallbackTotal.WithLabelValues(reason).Inc()
	domain.UsageFromContext(ctx).MarkFallback()

	fallback := e.repo.PatternSearch(ctx, query, limit)
	switch fallback.Status {
	case document.StatusUnavailable:
		return Retrieval{}, fmt.Errorf("%w: %w", domain.ErrRepositoryUnavailable, fallback.Err)
	case document.StatusUnsupported:
		e.logger.Warn("Pattern search unsupported, continuing without fallback", zap.Error(fallback.Err))
		return Retrieval{Primary: primary.Documents}, nil
	}

	return Retrieval{Primary: primary.Documents, Fallback: fallback.Documents}, nil
}
