package casesearch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/metrics"
	"github.com/kailas-cloud/casesearch/internal/repository/embcache"
	ollamaEmb "github.com/kailas-cloud/casesearch/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/casesearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/casesearch/internal/usecase/embedding"
)

const (
	providerOpenAI = "openai"
	providerOllama = "ollama"
)

// Embedder turns texts into vectors, one per text, in input order.
// Vectors need not be normalized.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := a.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	vecs, err := a.inner.Embed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"%w: got %d vectors for %d texts", domain.ErrEmbeddingMismatch, len(vecs), len(texts),
		)
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

// buildEmbedder assembles the rerank embedder, or returns nil when reranking is off.
// A provider chain is built lazily: Provider -> Normalized -> Cached -> Instrumented.
func buildEmbedder(cfg *clientConfig) (*embeddinguc.Lazy, domain.BatchEmbedder) {
	if cfg.embedder != nil {
		return nil, embeddinguc.NewNormalizedEmbedder(&embedderAdapter{inner: cfg.embedder})
	}
	if cfg.provider == nil {
		return nil, nil
	}

	p := *cfg.provider
	ttl := cfg.cacheTTL
	logger := cfg.logger
	lazy := embeddinguc.NewLazy(func(context.Context) (domain.Embedder, error) {
		base, err := newProvider(p, logger)
		if err != nil {
			return nil, err
		}

		var e domain.Embedder = embeddinguc.NewNormalizedEmbedder(base)
		if ttl > 0 {
			e = embcache.New(e, embcache.NewMemoryStore(ttl), embcache.Config{
				Model: p.model,
				TTL:   ttl,
			}, metrics.EmbeddingCacheTotal, logger)
		}
		return embeddinguc.NewInstrumentedEmbedder(e, p.name, p.model, logger), nil
	})
	return lazy, lazy
}

func newProvider(p providerConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch p.name {
	case providerOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     p.apiKey,
			BaseURL:    p.baseURL,
			Model:      p.model,
			Dimensions: p.dimensions,
			Provider:   p.name,
			Logger:     logger,
		}), nil
	case providerOllama:
		e, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			ServerURL: p.baseURL,
			Model:     p.model,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("casesearch: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("casesearch: unknown embedding provider %q", p.name)
	}
}
