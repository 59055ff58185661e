package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casesearch"
	"github.com/kailas-cloud/casesearch/internal/config"
	logpkg "github.com/kailas-cloud/casesearch/internal/logger"
	"github.com/kailas-cloud/casesearch/internal/samples"
	"github.com/kailas-cloud/casesearch/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		warnColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "casectl",
		Usage:   "Search and seed the case-law collection",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (reads config/<env>.yaml)",
				Value:   config.GetEnv(),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search cases and print them as cards",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of cases (0 uses the configured default)",
					},
					&cli.BoolFlag{
						Name:  "no-samples",
						Usage: "Do not show sample cases when the store is unavailable or finds nothing",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load cases into the store and build the text index",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "JSON array of case records (default: bundled sample cases)",
					},
				},
			},
		},
	}
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("query is required")
	}
	limit := c.Int("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", limit)
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fallback := cfg.Search.SampleFallback && !c.Bool("no-samples")
	ctx := c.Context

	client, err := casesearch.New(ctx, clientOptions(cfg, logger)...)
	if err != nil {
		if !fallback {
			return err
		}
		logger.Warn("Case store unavailable", zap.Error(err))
		warnColor.Fprintln(c.App.Writer, "Case store is unavailable. Showing sample cases instead.")
		renderCases(c.App.Writer, samples.Cases())
		return nil
	}
	defer client.Close()

	cases, err := client.SearchWithLimit(ctx, query, limit)
	switch {
	case errors.Is(err, casesearch.ErrUnavailable) && fallback:
		logger.Warn("Search failed", zap.Error(err))
		warnColor.Fprintln(c.App.Writer, "Case store is unavailable. Showing sample cases instead.")
		cases = samples.Cases()
	case err != nil:
		return err
	case len(cases) == 0 && fallback:
		warnColor.Fprintln(c.App.Writer, "No matching cases. Showing sample cases instead.")
		cases = samples.Cases()
	case len(cases) == 0:
		fmt.Fprintln(c.App.Writer, "No matching cases.")
		return nil
	}

	renderCases(c.App.Writer, cases)
	return nil
}

func seedCommand(c *cli.Context) error {
	cases, err := loadCases(c.String("file"))
	if err != nil {
		return err
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(c.Context, 2*time.Minute)
	defer cancel()

	client, err := casesearch.New(ctx, clientOptions(cfg, logger)...)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Seed(ctx, cases); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Seeded %d cases into %s/%s\n", len(cases), cfg.Database.Driver, cfg.Database.Collection)
	return nil
}

// loadCases reads a JSON array of case records, or the bundled samples when path is empty.
func loadCases(path string) ([]casesearch.Case, error) {
	if path == "" {
		return samples.Cases(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var cases []casesearch.Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%s contains no cases", path)
	}
	return cases, nil
}

func setup(c *cli.Context) (config.Config, *zap.Logger, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logpkg.NewLogger(env, c.String("log-level"))
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// clientOptions maps the service configuration onto library options.
func clientOptions(cfg config.Config, logger *zap.Logger) []casesearch.Option {
	db := cfg.Database
	opts := []casesearch.Option{
		casesearch.WithCollection(db.Collection),
		casesearch.WithLimit(cfg.Search.Limit),
		casesearch.WithReadinessTimeout(time.Duration(db.ReadinessTimeout) * time.Second),
		casesearch.WithConnectTimeout(time.Duration(db.ConnectTimeoutMs) * time.Millisecond),
		casesearch.WithLogger(logger),
	}
	if len(cfg.Search.TextFields) > 0 {
		opts = append(opts, casesearch.WithTextFields(cfg.Search.TextFields...))
	}
	if len(cfg.Search.PatternFields) > 0 {
		opts = append(opts, casesearch.WithPatternFields(cfg.Search.PatternFields...))
	}

	switch db.Driver {
	case config.DriverMongo:
		opts = append(opts, casesearch.WithMongo(db.URI, db.Name))
	case config.DriverRedis:
		opts = append(opts, casesearch.WithRedis(db.Addrs...), casesearch.WithPassword(db.Password), casesearch.WithKeyPrefix(db.KeyPrefix))
	case config.DriverValkey:
		opts = append(opts, casesearch.WithValkey(db.Addrs...), casesearch.WithPassword(db.Password), casesearch.WithKeyPrefix(db.KeyPrefix))
	}

	emb := cfg.Embedding
	switch emb.Provider {
	case config.ProviderOpenAI:
		opts = append(opts, casesearch.WithOpenAI(emb.APIKey, emb.BaseURL, emb.Model, emb.Dimensions))
	case config.ProviderOllama:
		opts = append(opts, casesearch.WithOllama(emb.BaseURL, emb.Model))
	}
	// The library cache is in-process only; "store" maps to memory too.
	if emb.Cache != config.CacheNone {
		opts = append(opts, casesearch.WithEmbeddingCache(time.Duration(emb.CacheTTLSec)*time.Second))
	}
	return opts
}
