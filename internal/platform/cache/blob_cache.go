package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlobCache stores byte blobs such as audio clips in Redis.
type RedisBlobCache struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisBlobCache returns a blob cache. If namespace is empty, it uses "blob".
func NewRedisBlobCache(rdb *redis.Client, namespace string) *RedisBlobCache {
	if namespace == "" {
		namespace = "blob"
	}
	return &RedisBlobCache{rdb: rdb, namespace: namespace}
}

func (c *RedisBlobCache) key(k string) string {
	return c.namespace + ":" + safe(k)
}

// Get returns the blob and reports whether it was found.
func (c *RedisBlobCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores a blob. A ttl of 0 never expires.
func (c *RedisBlobCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(key), value, ttl).Err()
}

// MemoryBlobCache is an in-process blob cache used when Redis is not configured.
type MemoryBlobCache struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

type memItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryBlobCache returns an empty in-memory cache.
func NewMemoryBlobCache() *MemoryBlobCache {
	return &MemoryBlobCache{items: make(map[string]memItem), now: time.Now}
}

// Get returns an item that exists and is not expired.
func (c *MemoryBlobCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}
	return it.value, true, nil
}

// Set stores an item. An item with ttl = 0 never expires.
func (c *MemoryBlobCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var at time.Time
	if ttl > 0 {
		at = c.now().Add(ttl)
	}
	c.items[key] = memItem{value: value, expiresAt: at}
	return nil
}
