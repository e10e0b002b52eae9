package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/redis/go-redis/v9"

	"hanzi_backend/internal/feature/recognition/adapters/gemini"
	"hanzi_backend/internal/feature/recognition/adapters/openai"
	"hanzi_backend/internal/feature/recognition/adapters/vision"
	recognitionusecase "hanzi_backend/internal/feature/recognition/usecase"
	"hanzi_backend/internal/platform/cache"
	"hanzi_backend/internal/platform/config"
)

// NewDefaultRecognizer returns the Gemini backend wrapped in the result cache.
// It returns a nil interface when no Gemini key is configured.
func NewDefaultRecognizer(ctx context.Context, cfg *config.Config, rdb *redis.Client) (recognitionusecase.DefaultRecognizer, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, nil
	}
	g, err := gemini.NewGeminiRecognizer(ctx, gemini.Options{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	slog.Info("default backend ready", "model", g.Model())
	return cache.NewCachingDefaultRecognizer(rdb, cfg.Cache.ResultTTL, g, g.Model(), ""), nil
}

// NewCustomRecognizer returns the OpenAI-compatible backend wrapped in the result cache.
func NewCustomRecognizer(rc *retryablehttp.Client, cfg *config.Config, rdb *redis.Client) recognitionusecase.CustomRecognizer {
	return cache.NewCachingCustomRecognizer(rdb, cfg.Cache.ResultTTL, openai.NewClient(rc), "")
}

// NewTextReader returns the Cloud Vision reader, or nil when text mode is disabled.
// The returned close function is never nil.
func NewTextReader(ctx context.Context, cfg *config.Config) (recognitionusecase.TextReader, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Vision.Enabled {
		return nil, noop, nil
	}
	v, err := vision.NewVisionTextReader(ctx)
	if err != nil {
		return nil, noop, fmt.Errorf("create vision client: %w", err)
	}
	return v, v.Close, nil
}
