package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces document keys.
const DefaultPrefix = "flowedit:doc:"

// Store implements ports.DocumentStore using Redis.
// Documents are stored as JSON; a ZSET indexes names by expiry for List.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for documents.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for documents.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying client, shared with the Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the document to Redis.
func (s *Store) Save(ctx context.Context, name string, doc document.Document) error {
	data, err := document.Marshal(doc, document.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	pipe := s.client.Pipeline()

	// Use 0 for no expiration if ttl is not set.
	pipe.Set(ctx, s.key(name), data, s.ttl)

	// Score = Now + TTL. If TTL = 0, Score = +Inf (approx).
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: name,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the document from Redis.
func (s *Store) Load(ctx context.Context, name string) (document.Document, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return document.Document{}, domain.ErrDocumentNotFound
		}
		return document.Document{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	doc, err := document.Decode(val, document.FormatJSON)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to decode stored document %q: %w", name, err)
	}
	return doc, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the live document names, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	// ZREMRANGEBYSCORE key -inf (now)
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired documents: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
