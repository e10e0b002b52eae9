// Package adapters はsettingsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hanzi_backend/internal/feature/settings/usecase"
)

// SettingModel はキーごとにJSON文字列を保存するテーブルです。
type SettingModel struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SettingModel) TableName() string { return "app_settings" }

// settingsGorm はStoreインターフェースのgorm実装です。
type settingsGorm struct {
	db *gorm.DB
}

var _ usecase.Store = (*settingsGorm)(nil)

// NewSettingsRepository は指定されたDB接続でsettingsGormの新しいインスタンスを生成します。
func NewSettingsRepository(db *gorm.DB) *settingsGorm {
	return &settingsGorm{db: db}
}

// Load はキーの値を返します。存在しない場合は ok=false です。
func (r *settingsGorm) Load(ctx context.Context, key string) (string, bool, error) {
	var m SettingModel
	err := r.db.WithContext(ctx).Where("key = ?", key).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m.Value, true, nil
}

// Save はキーの値を上書き保存します。
func (r *settingsGorm) Save(ctx context.Context, key, value string) error {
	m := SettingModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&m).Error
}
