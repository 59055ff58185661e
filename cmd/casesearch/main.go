package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch/internal/config"
	"github.com/kailas-cloud/casesearch/internal/db"
	dbMongo "github.com/kailas-cloud/casesearch/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/casesearch/internal/db/redis"
	dbValkey "github.com/kailas-cloud/casesearch/internal/db/valkey"
	"github.com/kailas-cloud/casesearch/internal/domain"
	logpkg "github.com/kailas-cloud/casesearch/internal/logger"
	"github.com/kailas-cloud/casesearch/internal/metrics"
	"github.com/kailas-cloud/casesearch/internal/repository/casedoc"
	"github.com/kailas-cloud/casesearch/internal/repository/embcache"
	"github.com/kailas-cloud/casesearch/internal/samples"
	chiTransport "github.com/kailas-cloud/casesearch/internal/transport/chi"
	ollamaEmb "github.com/kailas-cloud/casesearch/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/casesearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/casesearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/casesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/casesearch/internal/usecase/search"
	"github.com/kailas-cloud/casesearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting casesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	ctx := context.Background()

	backend, kv, err := openBackend(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer backend.Close()

	// Wait for database to be ready
	if err := backend.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	// Embedder chain is built on first rerank, not at startup.
	var (
		embedder   searchuc.Embedder
		embChecker healthuc.EmbeddingChecker
	)
	if cfg.Embedding.Provider != config.ProviderNone {
		lazy := embeddinguc.NewLazy(func(context.Context) (domain.Embedder, error) {
			return buildEmbedder(cfg.Embedding, kv, logger)
		})
		embedder, embChecker = lazy, lazy
	}

	repo := casedoc.New(backend, casedoc.Config{
		Collection:    cfg.Database.Collection,
		TextFields:    cfg.Search.TextFields,
		PatternFields: cfg.Search.PatternFields,
	})
	searchSvc := searchuc.New(repo, embedder, cfg.Search.Limit, logger)
	healthSvc := healthuc.New(backend, embChecker)

	opts := chiTransport.Options{APIKeys: cfg.Auth.APIKeys}
	if cfg.Search.SampleFallback {
		opts.Samples = samples.Cases
	}
	server := chiTransport.NewServer(searchSvc, healthSvc, opts, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openBackend creates the case store for the configured driver.
// kv is the store's key-value side for the embedding cache, nil for MongoDB.
func openBackend(ctx context.Context, cfg config.DatabaseConfig) (db.Backend, db.KVStore, error) {
	timeout := time.Duration(cfg.ConnectTimeoutMs) * time.Millisecond
	redisCfg := dbRedis.Config{
		Addrs:       cfg.Addrs,
		Password:    cfg.Password,
		KeyPrefix:   cfg.KeyPrefix,
		DialTimeout: timeout,
	}

	switch cfg.Driver {
	case config.DriverValkey:
		s, err := dbValkey.NewStore(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("valkey: %w", err)
		}
		return s, s, nil
	case config.DriverRedis:
		s, err := dbRedis.NewStore(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return s, s, nil
	case config.DriverMongo:
		s, err := dbMongo.NewStore(ctx, dbMongo.Config{
			URI:                    cfg.URI,
			Database:               cfg.Name,
			ServerSelectionTimeout: timeout,
			ConnectTimeout:         timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		return s, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedder assembles the decorator chain: Provider -> Normalized -> Cached -> Instrumented
func buildEmbedder(cfg config.EmbeddingConfig, kv db.KVStore, logger *zap.Logger) (domain.Embedder, error) {
	var base domain.Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	case config.ProviderOllama:
		e, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			ServerURL: cfg.BaseURL,
			Model:     cfg.Model,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		base = e
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	// Unit vectors so the reranker's dot product is cosine similarity
	var embedder domain.Embedder = embeddinguc.NewNormalizedEmbedder(base)

	ttl := time.Duration(cfg.CacheTTLSec) * time.Second
	cacheCfg := embcache.Config{Model: cfg.Model, TTL: ttl}
	switch {
	case cfg.Cache == config.CacheStore && kv != nil:
		embedder = embcache.New(embedder, kv, cacheCfg, metrics.EmbeddingCacheTotal, logger)
	case cfg.Cache == config.CacheMemory:
		embedder = embcache.New(embedder, embcache.NewMemoryStore(ttl), cacheCfg, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.String("cache", cfg.Cache),
	)
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger), nil
}
