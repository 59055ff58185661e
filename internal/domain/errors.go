package domain

import "errors"

var (
	// ErrRepositoryUnavailable signals that the case store could not be reached or queried.
	// It is the only error the search pipeline surfaces to callers.
	ErrRepositoryUnavailable = errors.New("case repository unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingMismatch signals that a provider returned vectors that cannot be compared.
	ErrEmbeddingMismatch = errors.New("embedding vectors mismatch")
	// ErrEmbedderNotConfigured signals that no embedding provider was set up.
	ErrEmbedderNotConfigured = errors.New("embedder not configured")
)
