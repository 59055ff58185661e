package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Embedding providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Embedding cache backends.
const (
	CacheNone   = "none"
	CacheStore  = "store"
	CacheMemory = "memory"
)

// Config holds the casesearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds case store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // mongo, redis, valkey (default: mongo)
	URI              string   `yaml:"uri"`    // mongo only
	Name             string   `yaml:"name"`   // mongo database
	Collection       string   `yaml:"collection"`
	Addrs            []string `yaml:"addrs"` // redis/valkey
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ConnectTimeoutMs int      `yaml:"connect_timeout_ms"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the reranking embedder settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // openai, ollama, none
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Cache       string `yaml:"cache"` // none, store, memory
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// SearchConfig holds pipeline settings.
type SearchConfig struct {
	Limit          int      `yaml:"limit"`
	TextFields     []string `yaml:"text_fields"`
	PatternFields  []string `yaml:"pattern_fields"`
	SampleFallback bool     `yaml:"sample_fallback"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.Name == "" {
		c.Database.Name = "law"
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "cases"
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "casesearch"
	}
	if c.Database.ConnectTimeoutMs <= 0 {
		c.Database.ConnectTimeoutMs = 3000
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderNone
	}
	if c.Embedding.Cache == "" {
		c.Embedding.Cache = CacheMemory
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 86400
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for driver %q", DriverMongo)
		}
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of mongo, redis, valkey, got %q", c.Database.Driver)
	}

	switch c.Embedding.Provider {
	case ProviderNone:
	case ProviderOpenAI, ProviderOllama:
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", c.Embedding.Provider)
		}
	default:
		return fmt.Errorf("embedding.provider must be one of openai, ollama, none, got %q", c.Embedding.Provider)
	}

	if !slices.Contains([]string{CacheNone, CacheStore, CacheMemory}, c.Embedding.Cache) {
		return fmt.Errorf("embedding.cache must be one of none, store, memory, got %q", c.Embedding.Cache)
	}
	if c.Embedding.Cache == CacheStore && c.Database.Driver == DriverMongo {
		return fmt.Errorf("embedding.cache %q needs a redis or valkey database", CacheStore)
	}

	for _, f := range slices.Concat(c.Search.TextFields, c.Search.PatternFields) {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("search fields must not be empty")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
