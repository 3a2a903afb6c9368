package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type countingStore struct {
	*MemoryStore
	getCalls int
}

func (s *countingStore) GetURL(ctx context.Context, objectID string) (*string, error) {
	s.getCalls++
	return s.MemoryStore.GetURL(ctx, objectID)
}

func TestCachedStore_GetURL_CachesHits(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	inner.Put("obj-1")
	cache := newFakeCache()
	cs := NewCachedStore(inner, cache, 30*time.Minute, logging.Nop{}, nil)
	ctx := context.Background()

	first, err := cs.GetURL(ctx, "obj-1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cs.GetURL(ctx, "obj-1")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, inner.getCalls)
	assert.Equal(t, 30*time.Minute, cache.ttls[urlKeyPrefix+"obj-1"])
}

func TestCachedStore_GetURL_MissingNotCached(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	cache := newFakeCache()
	cs := NewCachedStore(inner, cache, time.Minute, logging.Nop{}, nil)

	url, err := cs.GetURL(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, url)
	assert.Empty(t, cache.data)
}

func TestCachedStore_DegradesOnCacheFailure(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	inner.Put("obj-1")
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	cs := NewCachedStore(inner, cache, time.Minute, logging.Nop{}, nil)

	url, err := cs.GetURL(context.Background(), "obj-1")
	require.NoError(t, err)
	require.NotNil(t, url)
	assert.Equal(t, "memory://obj-1", *url)
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	inner.Put("obj-1")
	cache := newFakeCache()
	cs := NewCachedStore(inner, cache, time.Minute, logging.Nop{}, nil)
	ctx := context.Background()

	_, err := cs.GetURL(ctx, "obj-1")
	require.NoError(t, err)
	require.Contains(t, cache.data, urlKeyPrefix+"obj-1")

	require.NoError(t, cs.Delete(ctx, "obj-1"))
	assert.NotContains(t, cache.data, urlKeyPrefix+"obj-1")
	assert.False(t, inner.Has("obj-1"))
}

func TestCachedStore_DeleteErrorKeepsCache(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	cache := newFakeCache()
	cache.data[urlKeyPrefix+"obj-1"] = "cached"
	inner.Err = errors.New("s3 down")
	cs := NewCachedStore(inner, cache, time.Minute, logging.Nop{}, nil)

	assert.Error(t, cs.Delete(context.Background(), "obj-1"))
	assert.Contains(t, cache.data, urlKeyPrefix+"obj-1")
}

func TestCachedStore_UploadPassesThrough(t *testing.T) {
	cs := NewCachedStore(NewMemoryStore(), newFakeCache(), time.Minute, logging.Nop{}, nil)

	ticket, err := cs.GenerateUploadURL(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ObjectID)
	assert.NotEmpty(t, ticket.URL)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewRedisCache(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
