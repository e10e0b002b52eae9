// Package usecase はsettingsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"hanzi_backend/internal/feature/settings/domain/entity"
)

// sealedPrefix は暗号化済みAPIキーの接頭辞です。
const sealedPrefix = "sealed:"

// Store は設定をキー単位で保存するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Store interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
}

// Sealer はAPIキーを保存時に暗号化します。
type Sealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

// Patch は設定の更新内容です。APIKey が nil の場合は保存済みのキーを維持します。
type Patch struct {
	UseCustomAPI bool
	APIURL       string
	APIKey       *string
	Model        string
}

// settingsUsecase は設定の読み書きを提供します。
type settingsUsecase struct {
	store  Store
	sealer Sealer // nil の場合は平文で保存
}

// NewSettingsUsecase はsettingsUsecaseの新しいインスタンスを生成します。
func NewSettingsUsecase(store Store, sealer Sealer) *settingsUsecase {
	return &settingsUsecase{store: store, sealer: sealer}
}

// Get は保存済みの設定をデフォルト値に重ねて返します。
// 保存値が壊れている場合はログに残してデフォルトを返します。
func (u *settingsUsecase) Get(ctx context.Context) (entity.Settings, error) {
	var s entity.Settings

	raw, ok, err := u.store.Load(ctx, entity.StorageKey)
	if err != nil {
		return s, fmt.Errorf("failed to load settings: %w", err)
	}
	if !ok {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		slog.Error("failed to parse stored settings", "error", err)
		return entity.Settings{}, nil
	}

	if sealed, ok := strings.CutPrefix(s.APIKey, sealedPrefix); ok {
		if u.sealer == nil {
			slog.Warn("stored API key is sealed but no secret key is configured")
			s.APIKey = ""
			return s, nil
		}
		plain, err := u.sealer.Open(sealed)
		if err != nil {
			slog.Warn("failed to open stored API key", "error", err)
			s.APIKey = ""
			return s, nil
		}
		s.APIKey = plain
	}
	return s, nil
}

// Save は設定全体を保存します。
func (u *settingsUsecase) Save(ctx context.Context, s entity.Settings) error {
	stored := s
	if u.sealer != nil && s.APIKey != "" {
		sealed, err := u.sealer.Seal(s.APIKey)
		if err != nil {
			return fmt.Errorf("failed to seal API key: %w", err)
		}
		stored.APIKey = sealedPrefix + sealed
	}

	b, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := u.store.Save(ctx, entity.StorageKey, string(b)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Update は変更内容を現在の設定に適用して保存し、保存後の設定を返します。
func (u *settingsUsecase) Update(ctx context.Context, p Patch) (entity.Settings, error) {
	current, err := u.Get(ctx)
	if err != nil {
		return entity.Settings{}, err
	}

	next := entity.Settings{
		UseCustomAPI: p.UseCustomAPI,
		APIURL:       p.APIURL,
		APIKey:       current.APIKey,
		Model:        p.Model,
	}
	if p.APIKey != nil {
		next.APIKey = *p.APIKey
	}

	if err := u.Save(ctx, next); err != nil {
		return entity.Settings{}, err
	}
	slog.Info("settings updated", "use_custom_api", next.UseCustomAPI, "model", next.Model, "custom_ready", next.UsesCustomAPI())
	return next, nil
}
