// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	historyadapters "hanzi_backend/internal/feature/history/adapters"
	historyusecase "hanzi_backend/internal/feature/history/usecase"
)

// NewHistoryRepository creates a history Repository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL database.
func NewHistoryRepository(rdb *redis.Client, db *gorm.DB) historyusecase.Repository {
	if rdb != nil {
		return historyadapters.NewHistoryRedis(rdb, "history")
	}
	return historyadapters.NewHistoryRepository(db)
}
