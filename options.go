package casesearch

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver         string
	uri            string
	database       string
	addrs          []string
	password       string
	keyPrefix      string
	collection     string
	textFields     []string
	patternFields  []string
	limit          int
	readyTimeout   time.Duration
	connectTimeout time.Duration

	embedder Embedder
	provider *providerConfig
	cacheTTL time.Duration
	logger   *zap.Logger
}

type providerConfig struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	dimensions int
}

// WithMongo connects to MongoDB and searches the given database.
func WithMongo(uri, database string) Option {
	return func(c *clientConfig) {
		c.driver = driverMongo
		c.uri = uri
		c.database = database
	}
}

// WithRedis connects to Redis 8+ (RediSearch + RedisJSON).
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = addrs
	}
}

// WithValkey connects to Valkey. Text search is unavailable there, every query uses pattern search.
func WithValkey(addrs ...string) Option {
	return func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = addrs
	}
}

// WithPassword sets the Redis/Valkey password.
func WithPassword(password string) Option {
	return func(c *clientConfig) { c.password = password }
}

// WithKeyPrefix namespaces Redis/Valkey keys and indexes.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithCollection selects the case collection (default "cases").
func WithCollection(name string) Option {
	return func(c *clientConfig) { c.collection = name }
}

// WithTextFields overrides the fields covered by the text index.
func WithTextFields(fields ...string) Option {
	return func(c *clientConfig) { c.textFields = fields }
}

// WithPatternFields overrides the fields matched by pattern search.
func WithPatternFields(fields ...string) Option {
	return func(c *clientConfig) { c.patternFields = fields }
}

// WithLimit sets the default result size used by Search.
func WithLimit(n int) Option {
	return func(c *clientConfig) { c.limit = n }
}

// WithReadinessTimeout bounds how long New waits for the store.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.readyTimeout = d }
}

// WithConnectTimeout bounds dialing and server selection.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.connectTimeout = d }
}

// WithEmbedder reranks results with a caller-provided embedder.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithOpenAI reranks results with an OpenAI-compatible embeddings API.
// The client is created on the first search that needs it.
func WithOpenAI(apiKey, baseURL, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.provider = &providerConfig{
			name:       providerOpenAI,
			apiKey:     apiKey,
			baseURL:    baseURL,
			model:      model,
			dimensions: dimensions,
		}
	}
}

// WithOllama reranks results with a model served by a local Ollama.
func WithOllama(serverURL, model string) Option {
	return func(c *clientConfig) {
		c.provider = &providerConfig{
			name:    providerOllama,
			baseURL: serverURL,
			model:   model,
		}
	}
}

// WithEmbeddingCache keeps embeddings in process memory for ttl.
func WithEmbeddingCache(ttl time.Duration) Option {
	return func(c *clientConfig) { c.cacheTTL = ttl }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
