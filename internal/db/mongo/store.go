// Package mongo implements db.Backend over MongoDB: scored $text search with a
// case-insensitive $regex fallback.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/casesearch/internal/db"
)

// Compile-time check: Store implements db.Backend.
var _ db.Backend = (*Store)(nil)

const (
	defaultServerSelectionTimeout = 3 * time.Second
	defaultConnectTimeout         = 3 * time.Second
)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI                    string
	Database               string
	ServerSelectionTimeout time.Duration
	ConnectTimeout         time.Duration
}

// collection is the slice of *mongo.Collection the store reads and writes through.
type collection interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// Store implements db.Backend for MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	open   func(name string) collection
}

// NewStore connects and pings the primary, failing fast when no server is selectable.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	selection := cfg.ServerSelectionTimeout
	if selection <= 0 {
		selection = defaultServerSelectionTimeout
	}
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = defaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(selection).
		SetConnectTimeout(connect)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.Database)}
	s.open = func(name string) collection { return s.db.Collection(name) }

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpMongoPing, Err: err}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() {
	if s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// SupportsTextSearch returns true: $text exists on every supported server version.
// A collection without a text index still reports ErrTextSearchUnsupported per query.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return true
}

// indexNotFound is the server code for a $text query on a collection without a text index.
const indexNotFound = 27

// isMissingTextIndex reports whether err is the server refusing $text because
// the collection has no text index. Auth, network and other server errors are not.
func isMissingTextIndex(err error) bool {
	if err == nil || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(indexNotFound) || se.HasErrorMessage("text index required")
}

// classifyText wraps a $text failure, marking a missing text index as unsupported.
func classifyText(op string, err error) error {
	if isMissingTextIndex(err) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrTextSearchUnsupported, err)}
	}
	return &db.Error{Op: op, Err: err}
}
