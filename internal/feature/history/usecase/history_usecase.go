// Package usecase はhistoryフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hanzi_backend/internal/feature/history/domain/entity"
	recognition "hanzi_backend/internal/feature/recognition/domain/entity"
)

const (
	// DefaultLimit は一覧取得の既定件数です。
	DefaultLimit = 50
	// MaxLimit は一覧取得の上限件数です。
	MaxLimit = 200
)

// Repository は履歴の永続化を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Repository interface {
	Append(ctx context.Context, item entity.Item) error
	// List は新しい順に最大 limit 件を返します。
	List(ctx context.Context, limit int) ([]entity.Item, error)
	// Get は存在しない場合 domain.ErrNotFound を返します。
	Get(ctx context.Context, id uuid.UUID) (entity.Item, error)
	Clear(ctx context.Context) (int64, error)
}

type historyUsecase struct {
	repo Repository
	now  func() time.Time
}

// NewHistoryUsecase はhistoryUsecaseの新しいインスタンスを生成します。
func NewHistoryUsecase(repo Repository) *historyUsecase {
	return &historyUsecase{repo: repo, now: time.Now}
}

// Record は認識結果を履歴に追記し、採番したIDを返します。
func (u *historyUsecase) Record(ctx context.Context, imageDataURL string, result []recognition.CharacterInfo) (uuid.UUID, error) {
	if len(result) == 0 {
		return uuid.Nil, errors.New("result is empty")
	}
	item := entity.Item{
		ID:           uuid.New(),
		ImageDataURL: imageDataURL,
		Result:       result,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.repo.Append(ctx, item); err != nil {
		return uuid.Nil, fmt.Errorf("failed to append history item: %w", err)
	}
	return item.ID, nil
}

// List は新しい順に履歴を返します。limit は 1〜MaxLimit に丸めます。
func (u *historyUsecase) List(ctx context.Context, limit int) ([]entity.Item, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return u.repo.List(ctx, limit)
}

// Get はIDで履歴を1件返します。
func (u *historyUsecase) Get(ctx context.Context, id uuid.UUID) (entity.Item, error) {
	return u.repo.Get(ctx, id)
}

// Clear はすべての履歴を削除し、削除件数を返します。
func (u *historyUsecase) Clear(ctx context.Context) (int64, error) {
	return u.repo.Clear(ctx)
}
