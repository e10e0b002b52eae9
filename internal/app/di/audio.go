package di

import (
	"github.com/redis/go-redis/v9"

	pronunciationusecase "hanzi_backend/internal/feature/pronunciation/usecase"
	"hanzi_backend/internal/platform/cache"
)

// NewBlobCache returns the audio cache: Redis when available, in-memory otherwise.
func NewBlobCache(rdb *redis.Client) pronunciationusecase.BlobCache {
	if rdb != nil {
		return cache.NewRedisBlobCache(rdb, "audio")
	}
	return cache.NewMemoryBlobCache()
}
