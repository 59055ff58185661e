// Package casesearch searches a case-law collection: scored text search with a
// pattern fallback, deduplicated and reranked by embedding similarity.
package casesearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/db"
	dbMongo "github.com/kailas-cloud/casesearch/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/casesearch/internal/db/redis"
	dbValkey "github.com/kailas-cloud/casesearch/internal/db/valkey"
	"github.com/kailas-cloud/casesearch/internal/domain"
	"github.com/kailas-cloud/casesearch/internal/domain/document"
	"github.com/kailas-cloud/casesearch/internal/repository/casedoc"
	embeddinguc "github.com/kailas-cloud/casesearch/internal/usecase/embedding"
	searchuc "github.com/kailas-cloud/casesearch/internal/usecase/search"
)

const (
	driverMongo  = "mongo"
	driverRedis  = "redis"
	driverValkey = "valkey"
)

const defaultReadinessTimeout = 10 * time.Second

// Case is one court decision as returned by Search.
type Case = document.Document

// Outcome is the decision and directions of a Case.
type Outcome = document.Outcome

// ErrUnavailable is returned when the case store cannot be reached.
var ErrUnavailable = domain.ErrRepositoryUnavailable

// Client is the casesearch entry point.
type Client struct {
	backend db.Backend
	repo    casedoc.Config
	svc     *searchuc.Service
	lazy    *embeddinguc.Lazy
	logger  *zap.Logger
}

// New creates a Client and connects to the case store.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.driver == "" {
		return nil, errors.New("casesearch: case store required (use WithMongo, WithRedis or WithValkey)")
	}

	backend, err := createBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.readyTimeout
	if timeout <= 0 {
		timeout = defaultReadinessTimeout
	}
	if err := backend.WaitForReady(ctx, timeout); err != nil {
		backend.Close()
		return nil, fmt.Errorf("casesearch: case store not ready: %w", err)
	}

	return wireClient(backend, cfg), nil
}

func createBackend(ctx context.Context, cfg *clientConfig) (db.Backend, error) {
	switch cfg.driver {
	case driverMongo:
		s, err := dbMongo.NewStore(ctx, dbMongo.Config{
			URI:                    cfg.uri,
			Database:               cfg.database,
			ServerSelectionTimeout: cfg.connectTimeout,
			ConnectTimeout:         cfg.connectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("casesearch: create mongo store: %w", err)
		}
		return s, nil
	case driverValkey:
		s, err := dbValkey.NewStore(redisConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("casesearch: create valkey store: %w", err)
		}
		return s, nil
	case driverRedis:
		s, err := dbRedis.NewStore(redisConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("casesearch: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("casesearch: unknown driver %q", cfg.driver)
	}
}

func redisConfig(cfg *clientConfig) dbRedis.Config {
	return dbRedis.Config{
		Addrs:       cfg.addrs,
		Password:    cfg.password,
		KeyPrefix:   cfg.keyPrefix,
		DialTimeout: cfg.connectTimeout,
	}
}

func wireClient(backend db.Backend, cfg *clientConfig) *Client {
	repoCfg := casedoc.Config{
		Collection:    cfg.collection,
		TextFields:    cfg.textFields,
		PatternFields: cfg.patternFields,
	}
	lazy, embed := buildEmbedder(cfg)

	return &Client{
		backend: backend,
		repo:    repoCfg,
		svc:     searchuc.New(casedoc.New(backend, repoCfg), embed, cfg.limit, cfg.logger),
		lazy:    lazy,
		logger:  cfg.logger,
	}
}

// Search returns up to the default number of cases for query, best first.
// An empty query returns no cases. Only ErrUnavailable is returned as an error.
func (c *Client) Search(ctx context.Context, query string) ([]Case, error) {
	return c.SearchWithLimit(ctx, query, 0)
}

// SearchWithLimit is Search with an explicit result size. limit <= 0 uses the default.
func (c *Client) SearchWithLimit(ctx context.Context, query string, limit int) ([]Case, error) {
	docs, err := c.svc.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return docs, nil
}

// DefaultLimit is the result size used by Search.
func (c *Client) DefaultLimit() int {
	return c.svc.DefaultLimit()
}

// Seed writes cases to the collection and builds its text index.
// Stores without text search (Valkey) only receive the cases.
func (c *Client) Seed(ctx context.Context, cases []Case) error {
	return casedoc.Seed(ctx, c.backend, c.repo, cases, c.logger)
}

// Ping checks case store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EmbedderLoaded reports whether a lazily configured embedding provider has been created.
func (c *Client) EmbedderLoaded() bool {
	return c.lazy != nil && c.lazy.Loaded()
}

// Close releases all resources.
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}
