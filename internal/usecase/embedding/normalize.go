package embedding

import (
	"context"
	"math"

	"github.com/kailas-cloud/casesearch/internal/domain"
)

// NormalizedEmbedder scales every vector to unit length, so dot product equals cosine similarity.
// Zero vectors are returned as-is.
type NormalizedEmbedder struct {
	inner domain.Embedder
}

// NewNormalizedEmbedder wraps inner.
func NewNormalizedEmbedder(inner domain.Embedder) *NormalizedEmbedder {
	return &NormalizedEmbedder{inner: inner}
}

// Embed returns a unit-length embedding of text.
func (n *NormalizedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := n.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	res.Embedding = Unit(res.Embedding)
	return res, nil
}

// BatchEmbed returns unit-length embeddings of texts in input order.
func (n *NormalizedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	res, err := domain.Batch(n.inner).BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	for i, v := range res.Embeddings {
		res.Embeddings[i] = Unit(v)
	}
	return res, nil
}

// HealthCheck forwards to the inner embedder when supported.
func (n *NormalizedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := n.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Unit returns a copy of v scaled to L2 norm 1.
func Unit(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
