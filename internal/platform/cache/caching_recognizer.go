// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/usecase"
	settingsentity "hanzi_backend/internal/feature/settings/domain/entity"
)

const (
	defaultResultTTL       = 24 * time.Hour
	defaultResultNamespace = "recognition"
)

// resultCache は認識結果をRedisに保存する共通部分です。
type resultCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

func newResultCache(rdb *redis.Client, ttl time.Duration, namespace string) resultCache {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	if namespace == "" {
		namespace = defaultResultNamespace
	}
	return resultCache{rdb: rdb, ttl: ttl, namespace: namespace}
}

// cacheKey は送信先・モデル・画像ハッシュからキーを作ります。
func (c resultCache) cacheKey(route entity.Route, model string, img entity.Image) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.namespace, route, safe(model), img.Hash())
}

// fetch returns a cached result or calls load and stores its result.
func (c resultCache) fetch(ctx context.Context, key string, load func() ([]entity.CharacterInfo, error)) ([]entity.CharacterInfo, error) {
	if c.rdb == nil {
		return load()
	}

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.CharacterInfo
		if err := json.Unmarshal(b, &out); err == nil && usecase.Validate(out) == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	// 検証を通らない結果は保存しない
	if usecase.Validate(out) != nil {
		return out, nil
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// CachingDefaultRecognizer decorates the built-in backend with Redis caching.
// Only results that pass validation are stored.
type CachingDefaultRecognizer struct {
	resultCache
	inner usecase.DefaultRecognizer
	model string
}

var _ usecase.DefaultRecognizer = (*CachingDefaultRecognizer)(nil)

// NewCachingDefaultRecognizer decorates a DefaultRecognizer with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "recognition".
func NewCachingDefaultRecognizer(rdb *redis.Client, ttl time.Duration, inner usecase.DefaultRecognizer, model, namespace string) *CachingDefaultRecognizer {
	return &CachingDefaultRecognizer{
		resultCache: newResultCache(rdb, ttl, namespace),
		inner:       inner,
		model:       model,
	}
}

// Recognize returns the cached result for the image or asks the inner backend.
func (c *CachingDefaultRecognizer) Recognize(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error) {
	key := c.cacheKey(entity.RouteDefault, c.model, img)
	return c.fetch(ctx, key, func() ([]entity.CharacterInfo, error) {
		return c.inner.Recognize(ctx, img)
	})
}

// CachingCustomRecognizer decorates the OpenAI-compatible backend with Redis caching.
// The endpoint and model are part of the key, so changing settings never serves a stale result.
type CachingCustomRecognizer struct {
	resultCache
	inner usecase.CustomRecognizer
}

var _ usecase.CustomRecognizer = (*CachingCustomRecognizer)(nil)

// NewCachingCustomRecognizer decorates a CustomRecognizer with Redis caching.
func NewCachingCustomRecognizer(rdb *redis.Client, ttl time.Duration, inner usecase.CustomRecognizer, namespace string) *CachingCustomRecognizer {
	return &CachingCustomRecognizer{
		resultCache: newResultCache(rdb, ttl, namespace),
		inner:       inner,
	}
}

// Recognize returns the cached result for the image or asks the inner backend.
func (c *CachingCustomRecognizer) Recognize(ctx context.Context, img entity.Image, s settingsentity.Settings) ([]entity.CharacterInfo, error) {
	key := c.cacheKey(entity.RouteCustom, s.Endpoint()+"|"+s.Model, img)
	return c.fetch(ctx, key, func() ([]entity.CharacterInfo, error) {
		return c.inner.Recognize(ctx, img, s)
	})
}
