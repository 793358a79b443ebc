package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/meeting"
	"github.com/kbukum/transcriptkit/transcript"
)

// TypedStore provides typed JSON get/set operations on Redis.
type TypedStore[T any] struct {
	rdb       goredis.UniversalClient
	keyPrefix string
}

// NewTypedStore creates a TypedStore. Keys are prefixed with keyPrefix
// followed by a colon.
func NewTypedStore[T any](rdb goredis.UniversalClient, keyPrefix string) *TypedStore[T] {
	return &TypedStore[T]{rdb: rdb, keyPrefix: keyPrefix}
}

func (s *TypedStore[T]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load deserializes the value at key. Returns (nil, nil) if the key doesn't exist.
func (s *TypedStore[T]) Load(ctx context.Context, key string) (*T, error) {
	raw, err := s.rdb.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if stderrors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("typed store load %q: %w", key, err)
	}

	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("typed store unmarshal %q: %w", key, err)
	}
	return &val, nil
}

// Save serializes val and stores it with a TTL. A TTL of 0 means no expiration.
func (s *TypedStore[T]) Save(ctx context.Context, key string, val *T, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	if err := s.rdb.Set(ctx, s.fullKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("typed store save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *TypedStore[T]) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("typed store delete %q: %w", key, err)
	}
	return nil
}

// Cache implements meeting.Cache on Redis.
type Cache struct {
	rdb   *goredis.Client
	store *TypedStore[transcript.Result]
	ttl   time.Duration
	log   *logger.Logger
}

var _ meeting.Cache = (*Cache)(nil)

// NewCache connects to Redis and verifies the connection.
func NewCache(ctx context.Context, cfg CacheConfig) (*Cache, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, errors.ServiceUnavailable("transcript cache").WithDetail("reason", "disabled")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	c := NewCacheWithClient(rdb, cfg)
	if err := c.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	c.log.Info("redis cache connected", logger.Fields(
		"addr", cfg.Addr,
		"db", cfg.DB,
		"ttl", cfg.TTL.String(),
	))
	return c, nil
}

// NewCacheWithClient wraps an existing client.
func NewCacheWithClient(rdb *goredis.Client, cfg CacheConfig) *Cache {
	cfg.ApplyDefaults()
	return &Cache{
		rdb:   rdb,
		store: NewTypedStore[transcript.Result](rdb, cfg.KeyPrefix),
		ttl:   cfg.TTL,
		log:   logger.Get("cache"),
	}
}

// Ping verifies the Redis connection is alive.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.ServiceUnavailable("transcript cache").WithCause(err)
	}
	return nil
}

// Put caches an assembled transcript.
func (c *Cache) Put(ctx context.Context, meetingID string, res *transcript.Result) error {
	return c.store.Save(ctx, meetingID, res, c.ttl)
}

// Get returns the cached transcript, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, meetingID string) (*transcript.Result, error) {
	return c.store.Load(ctx, meetingID)
}

// Invalidate drops a cached transcript.
func (c *Cache) Invalidate(ctx context.Context, meetingID string) error {
	return c.store.Delete(ctx, meetingID)
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	c.log.Info("closing redis connection")
	return c.rdb.Close()
}
