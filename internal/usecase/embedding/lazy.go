package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/casesearch/internal/domain"
)

// Factory builds the embedder chain. It may load a model or dial a provider.
type Factory func(ctx context.Context) (domain.Embedder, error)

type loaded struct {
	embedder domain.Embedder
}

// Lazy defers building the embedder until first use.
// Concurrent first calls share one construction; a failed construction is retried on the next call.
type Lazy struct {
	build Factory
	group singleflight.Group
	live  atomic.Pointer[loaded]
}

// NewLazy returns an embedder that calls build at most once successfully.
func NewLazy(build Factory) *Lazy {
	return &Lazy{build: build}
}

// Get returns the embedder, constructing it if needed.
func (l *Lazy) Get(ctx context.Context) (domain.Embedder, error) {
	if p := l.live.Load(); p != nil {
		return p.embedder, nil
	}

	v, err, _ := l.group.Do("embedder", func() (any, error) {
		if p := l.live.Load(); p != nil {
			return p, nil
		}
		e, err := l.build(ctx)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, domain.ErrEmbedderNotConfigured
		}
		p := &loaded{embedder: e}
		l.live.Store(p)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	return v.(*loaded).embedder, nil
}

// Loaded reports whether the embedder has been built.
func (l *Lazy) Loaded() bool {
	return l.live.Load() != nil
}

// Embed builds the embedder on first use and delegates.
func (l *Lazy) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	e, err := l.Get(ctx)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return e.Embed(ctx, text)
}

// BatchEmbed builds the embedder on first use and delegates.
func (l *Lazy) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e, err := l.Get(ctx)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return domain.Batch(e).BatchEmbed(ctx, texts)
}

// HealthCheck reports the provider's health. An unbuilt embedder is built first.
func (l *Lazy) HealthCheck(ctx context.Context) error {
	e, err := l.Get(ctx)
	if err != nil {
		return err
	}
	if hc, ok := e.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
