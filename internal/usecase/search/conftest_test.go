package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/domain/document"
)

// --- Mocks ---

type mockRepo struct {
	text    document.Result
	pattern document.Result

	textCalls    int
	patternCalls int
	lastLimit    int
}

func (m *mockRepo) TextSearch(_ context.Context, _ string, limit int) document.Result {
	m.textCalls++
	m.lastLimit = limit
	return m.text
}

func (m *mockRepo) PatternSearch(_ context.Context, _ string, limit int) document.Result {
	m.patternCalls++
	m.lastLimit = limit
	return m.pattern
}

// mockEmbedder maps each text to a fixed vector; unknown texts get the zero vector.
type mockEmbedder struct {
	vectors map[string][]float32
	dim     int
	err     error
	calls   int
	texts   []string
	tokens  int
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	m.texts = texts
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = make([]float32, m.dim)
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: m.tokens}, nil
}

var errEmbedDown = errors.New("model not loaded")

func titled(id, title string) document.Document {
	raw := map[string]any{document.FieldTitle: title}
	if id != "" {
		raw[document.FieldID] = id
	}
	return document.Normalize(raw)
}

func ids(docs []document.Document) []string {
	out := make([]string, len(docs))
	for i := range docs {
		if docs[i].HasID() {
			out[i] = docs[i].ID
			continue
		}
		out[i] = docs[i].Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newTestService(t *testing.T, repo Repository, emb Embedder) *Service {
	t.Helper()
	return New(repo, emb, DefaultLimit, zap.NewNop())
}
