package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// インメモリDBは接続ごとに別物になるため1接続に固定する
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&SettingModel{}), "failed to migrate table")
	return db
}

func TestSettingsGorm_LoadMissing(t *testing.T) {
	t.Parallel()

	repo := NewSettingsRepository(setupTestDB(t))

	value, ok, err := repo.Load(context.Background(), "ai_settings")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSettingsGorm_SaveAndOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)

	require.NoError(t, repo.Save(ctx, "ai_settings", `{"useCustomApi":false}`))
	require.NoError(t, repo.Save(ctx, "ai_settings", `{"useCustomApi":true}`))
	require.NoError(t, repo.Save(ctx, "other", `1`))

	value, ok, err := repo.Load(ctx, "ai_settings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"useCustomApi":true}`, value)

	var count int64
	require.NoError(t, db.Model(&SettingModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
