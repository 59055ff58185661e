// Package ollama provides a local embedding provider backed by an Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/metrics"
)

// ProviderName labels metrics and logs.
const ProviderName = "ollama"

// DefaultServerURL is where a local Ollama listens.
const DefaultServerURL = "http://localhost:11434"

// DefaultBatchSize bounds the texts sent per embedding request.
const DefaultBatchSize = 64

// Config holds the Ollama provider settings.
type Config struct {
	ServerURL string
	Model     string
	BatchSize int
	Logger    *zap.Logger
}

// Embedder produces embeddings with a local model. Ollama reports no token usage.
type Embedder struct {
	inner     embeddings.Embedder
	serverURL string
	model     string
	http      *http.Client
	logger    *zap.Logger
}

// NewEmbedder connects the langchaingo Ollama client. The model is loaded by the server on first request.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama: model is required: %w", domain.ErrEmbedderNotConfigured)
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}

	inner, err := embeddings.NewEmbedder(llm,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(batch),
	)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: %w", err)
	}

	return newEmbedder(inner, serverURL, cfg.Model, cfg.Logger), nil
}

func newEmbedder(inner embeddings.Embedder, serverURL, model string, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		inner:     inner,
		serverURL: strings.TrimRight(serverURL, "/"),
		model:     model,
		http:      &http.Client{Timeout: 5 * time.Second},
		logger:    logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	vecs, err := e.inner.EmbedDocuments(ctx, texts)
	duration := time.Since(start)

	if err != nil {
		e.fail("api_error")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("ollama embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(vecs) != len(texts) {
		e.fail("count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(vecs), domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderName, e.model).Observe(duration.Seconds())

	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

// HealthCheck pings the Ollama server root, which answers 200 when running.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.serverURL+"/", nil)
	if err != nil {
		return fmt.Errorf("ollama health request: %w", err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health: status %d", resp.StatusCode)
	}
	return nil
}

func (e *Embedder) fail(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, e.model, kind).Inc()
	e.logger.Warn("Ollama embedding failed", zap.String("model", e.model), zap.String("error_type", kind))
}
