package di

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	captureusecase "hanzi_backend/internal/feature/capture/usecase"
	historyhandler "hanzi_backend/internal/feature/history/transport/handler"
	historyusecase "hanzi_backend/internal/feature/history/usecase"
	modelcatalogusecase "hanzi_backend/internal/feature/modelcatalog/usecase"
	"hanzi_backend/internal/feature/pronunciation/adapters/dictionary"
	"hanzi_backend/internal/feature/pronunciation/adapters/tts"
	pronunciationhandler "hanzi_backend/internal/feature/pronunciation/transport/handler"
	pronunciationusecase "hanzi_backend/internal/feature/pronunciation/usecase"
	"hanzi_backend/internal/feature/recognition/adapters/openai"
	recognitionentity "hanzi_backend/internal/feature/recognition/domain/entity"
	recognitionhandler "hanzi_backend/internal/feature/recognition/transport/handler"
	recognitionusecase "hanzi_backend/internal/feature/recognition/usecase"
	settingsadapters "hanzi_backend/internal/feature/settings/adapters"
	settingshandler "hanzi_backend/internal/feature/settings/transport/handler"
	settingsusecase "hanzi_backend/internal/feature/settings/usecase"
	"hanzi_backend/internal/platform/config"
	infradb "hanzi_backend/internal/platform/db"
	infrahttp "hanzi_backend/internal/platform/http"
	infraredis "hanzi_backend/internal/platform/redis"
	"hanzi_backend/internal/platform/secret"
)

const ttsTimeout = 15 * time.Second

// Flow は撮影フローに加えて、終了時の待機を提供します。
type Flow interface {
	recognitionhandler.FlowUsecase
	Wait()
}

// Pronunciation は発音ユースケースです。
type Pronunciation interface {
	pronunciationhandler.PronunciationUsecase
	Prefetch(ctx context.Context, result []recognitionentity.CharacterInfo) error
}

// ModelCatalog はモデル一覧ユースケースです。
type ModelCatalog interface {
	ListModels(ctx context.Context, apiURL, apiKey string) ([]string, error)
}

// App は組み立て済みのアプリケーション部品です。
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client // nil の場合はキャッシュなし

	Snapshotter   *captureusecase.Snapshotter
	Flow          Flow
	Settings      settingshandler.SettingsUsecase
	History       historyhandler.HistoryUsecase
	Pronunciation Pronunciation
	ModelCatalog  ModelCatalog

	closers []func() error
}

// New は設定から全ての依存関係を組み立てます。
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	db, err := infradb.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.DB = db
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			a.Redis = rdb
			a.closers = append(a.closers, rdb.Close)
		}
	}

	// Settings
	var sealer settingsusecase.Sealer
	if cfg.Secret.Key != "" {
		sealer = secret.NewBox(cfg.Secret.Key)
	}
	settingsUC := settingsusecase.NewSettingsUsecase(settingsadapters.NewSettingsRepository(db), sealer)
	a.Settings = settingsUC

	// Recognition
	aiClient := infrahttp.NewRetryableClient(cfg.AI.Timeout, cfg.AI.ModelListRetry)
	def, err := NewDefaultRecognizer(ctx, cfg, a.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	reader, closeReader, err := NewTextReader(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeReader)

	dict := dictionary.New()
	recUC := recognitionusecase.NewRecognitionUsecase(def, NewCustomRecognizer(aiClient, cfg, a.Redis), reader, dict, cfg.AI.Timeout)

	// History
	historyUC := historyusecase.NewHistoryUsecase(NewHistoryRepository(a.Redis, db))
	a.History = historyUC

	// Pronunciation
	ttsClient := tts.New(infrahttp.NewRetryableClient(ttsTimeout, 2), cfg.TTS.BaseURL, cfg.TTS.Language)
	pronUC := pronunciationusecase.NewPronunciationUsecase(ttsClient, NewBlobCache(a.Redis), dict, cfg.Cache.AudioTTL)
	a.Pronunciation = pronUC

	a.Flow = recognitionusecase.NewFlowUsecase(recUC, settingsUC, historyUC, pronUC)
	a.ModelCatalog = modelcatalogusecase.NewModelCatalogUsecase(openai.NewClient(aiClient), settingsUC)
	a.Snapshotter = captureusecase.NewSnapshotter(captureusecase.MaxEdge, captureusecase.JPEGQuality)

	return a, nil
}

// Close は実行中の事前取得を待ってから接続を閉じます。
func (a *App) Close() error {
	if a.Flow != nil {
		a.Flow.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
