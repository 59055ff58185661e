package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/domain/document"
	"github.com/kailas-cloud/casesearch/internal/metrics"
)

// Reranker reorders candidates by embedding similarity to the query.
type Reranker struct {
	embed  Embedder
	logger *zap.Logger
}

// NewReranker creates a reranker. A nil embedder disables reranking.
func NewReranker(embed Embedder, logger *zap.Logger) *Reranker {
	return &Reranker{embed: embed, logger: logger}
}

// Rerank returns docs sorted by descending similarity to query, ties in incoming order.
// Any embedding failure returns docs unchanged.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []document.Document) []document.Document {
	if len(docs) < 2 {
		metrics.RerankTotal.WithLabelValues(metrics.RerankTrivial).Inc()
		return docs
	}

	scores, err := r.score(ctx, query, docs)
	if err != nil {
		r.logger.Warn("Rerank skipped, keeping retrieval order",
			zap.Int("candidates", len(docs)),
			zap.Error(err),
		)
		metrics.RerankTotal.WithLabelValues(metrics.RerankSkipped).Inc()
		return docs
	}

	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]document.Document, len(docs))
	for i, idx := range order {
		out[i] = docs[idx]
	}

	metrics.RerankTotal.WithLabelValues(metrics.RerankApplied).Inc()
	domain.UsageFromContext(ctx).MarkReranked()
	return out
}

// score embeds the query and all candidate texts in one batch and returns dot products.
func (r *Reranker) score(ctx context.Context, query string, docs []document.Document) ([]float64, error) {
	if r.embed == nil {
		return nil, domain.ErrEmbedderNotConfigured
	}

	texts := make([]string, 0, len(docs)+1)
	texts = append(texts, query)
	for i := range docs {
		texts = append(texts, docs[i].Text())
	}

	res, err := r.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrEmbeddingMismatch, len(res.Embeddings), len(texts))
	}

	q := res.Embeddings[0]
	if len(q) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrEmbeddingMismatch)
	}

	scores := make([]float64, len(docs))
	for i := range docs {
		s, err := dot(q, res.Embeddings[i+1])
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		scores[i] = s
	}
	return scores, nil
}

var errNonFinite = errors.New("non-finite similarity")

func dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension %d vs %d", domain.ErrEmbeddingMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbeddingMismatch, errNonFinite)
	}
	return sum, nil
}
