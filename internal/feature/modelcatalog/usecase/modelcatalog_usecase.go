// Package usecase はOpenAI互換エンドポイントのモデル一覧取得を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	settingsentity "hanzi_backend/internal/feature/settings/domain/entity"
)

var (
	// ErrMissingURL はAPI URLが空であることを表します。
	ErrMissingURL = errors.New("api url is required")
	// ErrMissingKey はAPIキーが指定も保存もされていないことを表します。
	ErrMissingKey = errors.New("api key is required")
)

// ModelLister は互換APIの /models を呼び出します。
type ModelLister interface {
	ListModels(ctx context.Context, apiURL, apiKey string) ([]string, error)
}

// SettingsProvider は保存済みの設定を返します。
type SettingsProvider interface {
	Get(ctx context.Context) (settingsentity.Settings, error)
}

type modelCatalogUsecase struct {
	lister   ModelLister
	settings SettingsProvider
}

// NewModelCatalogUsecase はmodelCatalogUsecaseの新しいインスタンスを生成します。
func NewModelCatalogUsecase(lister ModelLister, settings SettingsProvider) *modelCatalogUsecase {
	return &modelCatalogUsecase{lister: lister, settings: settings}
}

// ListModels はモデルIDを返します。apiKey が空なら保存済みのキーを使います。
// 結果が空でもエラーにはしません。
func (u *modelCatalogUsecase) ListModels(ctx context.Context, apiURL, apiKey string) ([]string, error) {
	if strings.TrimSpace(apiURL) == "" {
		return nil, ErrMissingURL
	}
	if apiKey == "" {
		s, err := u.settings.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored api key: %w", err)
		}
		apiKey = s.APIKey
	}
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	return u.lister.ListModels(ctx, apiURL, apiKey)
}
