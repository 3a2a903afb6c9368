package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/metrics"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const urlKeyPrefix = "orgdrive:url:"

// URLCache stores retrieval URLs keyed by object id.
type URLCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisCache is the go-redis backed URLCache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and verifies the connection with PING.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedStore decorates an ObjectStore with a retrieval URL cache. Cache
// failures degrade to the inner store and are only logged.
type CachedStore struct {
	inner   ObjectStore
	cache   URLCache
	ttl     time.Duration
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewCachedStore caches URLs for ttl, which must be shorter than the
// presigned URL validity.
func NewCachedStore(inner ObjectStore, cache URLCache, ttl time.Duration, logger logging.Logger, m *metrics.Metrics) *CachedStore {
	return &CachedStore{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.With("module", "url-cache"),
		metrics: m,
	}
}

func (c *CachedStore) GenerateUploadURL(ctx context.Context) (*UploadTicket, error) {
	return c.inner.GenerateUploadURL(ctx)
}

func (c *CachedStore) GetURL(ctx context.Context, objectID string) (*string, error) {
	key := urlKeyPrefix + objectID

	v, err := c.cache.Get(ctx, key)
	if err == nil {
		c.metrics.URLCacheLookup(true)
		return &v, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn(ctx, "url cache read failed", "object_id", objectID, "error", err)
	}
	c.metrics.URLCacheLookup(false)

	url, err := c.inner.GetURL(ctx, objectID)
	if err != nil || url == nil {
		return url, err
	}

	if err := c.cache.Set(ctx, key, *url, c.ttl); err != nil {
		c.logger.Warn(ctx, "url cache write failed", "object_id", objectID, "error", err)
	}

	return url, nil
}

func (c *CachedStore) Delete(ctx context.Context, objectID string) error {
	if err := c.inner.Delete(ctx, objectID); err != nil {
		return err
	}
	if err := c.cache.Del(ctx, urlKeyPrefix+objectID); err != nil {
		c.logger.Warn(ctx, "url cache invalidation failed", "object_id", objectID, "error", err)
	}
	return nil
}
