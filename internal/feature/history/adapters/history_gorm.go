// Package adapters はhistoryフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hanzi_backend/internal/feature/history/domain"
	"hanzi_backend/internal/feature/history/domain/entity"
	"hanzi_backend/internal/feature/history/usecase"
	recognition "hanzi_backend/internal/feature/recognition/domain/entity"
)

// HistoryModel は history_items テーブルの行です。結果はJSONで保存します。
type HistoryModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Word         string    `gorm:"size:64"`
	ImageDataURL string    `gorm:"type:text"`
	Result       string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"index"`
}

func (HistoryModel) TableName() string { return "history_items" }

func toModel(item entity.Item) (HistoryModel, error) {
	b, err := json.Marshal(item.Result)
	if err != nil {
		return HistoryModel{}, err
	}
	return HistoryModel{
		ID:           item.ID.String(),
		Word:         item.Word(),
		ImageDataURL: item.ImageDataURL,
		Result:       string(b),
		CreatedAt:    item.CreatedAt,
	}, nil
}

func (m HistoryModel) toEntity() (entity.Item, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return entity.Item{}, fmt.Errorf("invalid history id %q: %w", m.ID, err)
	}
	var result []recognition.CharacterInfo
	if err := json.Unmarshal([]byte(m.Result), &result); err != nil {
		return entity.Item{}, fmt.Errorf("invalid history result for %s: %w", m.ID, err)
	}
	return entity.Item{
		ID:           id,
		ImageDataURL: m.ImageDataURL,
		Result:       result,
		CreatedAt:    m.CreatedAt.UTC(),
	}, nil
}

// historyGorm はRepositoryインターフェースのgorm実装です。
type historyGorm struct {
	db *gorm.DB
}

var _ usecase.Repository = (*historyGorm)(nil)

// NewHistoryRepository は指定されたDB接続でhistoryGormの新しいインスタンスを生成します。
func NewHistoryRepository(db *gorm.DB) *historyGorm {
	return &historyGorm{db: db}
}

// Append は履歴を1件追加します。
func (r *historyGorm) Append(ctx context.Context, item entity.Item) error {
	m, err := toModel(item)
	if err != nil {
		return fmt.Errorf("failed to encode history item: %w", err)
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// List は新しい順に最大 limit 件を返します。
func (r *historyGorm) List(ctx context.Context, limit int) ([]entity.Item, error) {
	var rows []HistoryModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entity.Item, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Get はIDで1件返します。
func (r *historyGorm) Get(ctx context.Context, id uuid.UUID) (entity.Item, error) {
	var row HistoryModel
	err := r.db.WithContext(ctx).Where("id = ?", id.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Item{}, domain.ErrNotFound
	}
	if err != nil {
		return entity.Item{}, err
	}
	return row.toEntity()
}

// Clear はすべての履歴を削除します。
func (r *historyGorm) Clear(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&HistoryModel{})
	return res.RowsAffected, res.Error
}
