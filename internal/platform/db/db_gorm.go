// Package db opens the gorm connection used by the settings and history stores.
package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	historyadapters "hanzi_backend/internal/feature/history/adapters"
	settingsadapters "hanzi_backend/internal/feature/settings/adapters"
	"hanzi_backend/internal/platform/config"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Opener は DSN から gorm.DB を開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// Open はドライバーに応じてDBへ接続し、必要ならマイグレーションを実行します。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	opener, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	wait := cfg.ConnectWait
	if wait <= 0 {
		wait = 60 * time.Second
	}
	db, err := ConnectWithRetry(cfg.DSN, wait, opener)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// OpenerFor returns the gorm opener for "sqlite" or "postgres".
// Postgres goes through pgx's database/sql driver.
func OpenerFor(driver string) (Opener, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case "sqlite":
		return func(dsn string) (*gorm.DB, error) {
			db, err := gorm.Open(sqlite.Open(dsn), gcfg)
			if err != nil {
				return nil, err
			}
			// SQLite は単一書き込みのため接続を1本に絞る
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(1)
			return db, nil
		}, nil
	case "postgres":
		return func(dsn string) (*gorm.DB, error) {
			sqlDB, err := sql.Open("pgx", dsn)
			if err != nil {
				return nil, err
			}
			if err := sqlDB.Ping(); err != nil {
				_ = sqlDB.Close()
				return nil, err
			}
			return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ConnectWithRetry は timeout までリトライしながら接続します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying...", "error", err)
		time.Sleep(retryInterval)
	}
}

// Migrate はアプリのテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&settingsadapters.SettingModel{},
		&historyadapters.HistoryModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
