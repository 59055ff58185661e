package health

import "context"

// DBPinger checks case store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// lazyLoader is implemented by embedders that are built on first use.
type lazyLoader interface {
	Loaded() bool
}
