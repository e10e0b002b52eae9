package db

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"hanzi_backend/internal/platform/config"
)

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	opener := func(dsn string) (*gorm.DB, error) {
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel because this test takes time due to retry sleeps

	mockDB := &gorm.DB{}
	attemptCount := 0

	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attemptCount != 3 {
		t.Errorf("expected 3 attempts, got %d", attemptCount)
	}
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)
	if err == nil {
		t.Fatal("expected error after timeout, got nil")
	}
	if attemptCount != 1 {
		t.Errorf("expected exactly one connection attempt, got %d", attemptCount)
	}
}

// TestOpenerFor_Unsupported は未対応ドライバーでエラーになることを検証します。
func TestOpenerFor_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := OpenerFor("mysql"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

// TestOpen_SQLiteMigrates はSQLiteで接続しテーブルが作成されることを検証します。
func TestOpen_SQLiteMigrates(t *testing.T) {
	t.Parallel()

	db, err := Open(config.DatabaseConfig{
		Driver:        "sqlite",
		DSN:           ":memory:",
		RunMigrations: true,
		ConnectWait:   time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, table := range []string{"app_settings", "history_items"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %q to exist", table)
		}
	}
}
