package search

import (
	"context"

	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/domain/document"
)

// Repository defines the storage contract for case retrieval.
// Neither method returns an error: the outcome class travels in document.Result.
type Repository interface {
	TextSearch(ctx context.Context, query string, limit int) document.Result
	PatternSearch(ctx context.Context, pattern string, limit int) document.Result
}

// Embedder vectorizes the query and candidate texts in one call.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
