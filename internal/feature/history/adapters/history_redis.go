package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hanzi_backend/internal/feature/history/domain"
	"hanzi_backend/internal/feature/history/domain/entity"
	"hanzi_backend/internal/feature/history/usecase"
)

// HistoryRedis implements usecase.Repository using Redis.
// Items are stored as JSON strings; a list keeps their IDs newest first.
type HistoryRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.Repository = (*HistoryRedis)(nil)

// NewHistoryRedis creates a new HistoryRedis instance.
func NewHistoryRedis(client *redis.Client, prefix string) *HistoryRedis {
	return &HistoryRedis{client: client, prefix: prefix}
}

func (r *HistoryRedis) itemKey(id string) string {
	return fmt.Sprintf("%s:item:%s", r.prefix, id)
}

func (r *HistoryRedis) indexKey() string {
	return r.prefix + ":ids"
}

// Append stores the item and pushes its ID to the head of the index.
func (r *HistoryRedis) Append(ctx context.Context, item entity.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal history item: %w", err)
	}

	id := item.ID.String()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.itemKey(id), data, 0)
		pipe.LPush(ctx, r.indexKey(), id)
		return nil
	})
	return err
}

// List returns up to limit items, newest first.
func (r *HistoryRedis) List(ctx context.Context, limit int) ([]entity.Item, error) {
	ids, err := r.client.LRange(ctx, r.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []entity.Item{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.itemKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	items := make([]entity.Item, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Item key is gone, drop the dangling ID
			r.client.LRem(ctx, r.indexKey(), 0, ids[i])
			continue
		}
		var item entity.Item
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Get retrieves an item by its ID.
func (r *HistoryRedis) Get(ctx context.Context, id uuid.UUID) (entity.Item, error) {
	data, err := r.client.Get(ctx, r.itemKey(id.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.Item{}, domain.ErrNotFound
		}
		return entity.Item{}, err
	}

	var item entity.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return entity.Item{}, fmt.Errorf("failed to unmarshal history item: %w", err)
	}
	return item, nil
}

// Clear deletes every item and the index.
func (r *HistoryRedis) Clear(ctx context.Context) (int64, error) {
	ids, err := r.client.LRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.itemKey(id))
	}
	keys = append(keys, r.indexKey())

	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		// The index key itself is not an item
		removed--
	}
	return removed, nil
}
