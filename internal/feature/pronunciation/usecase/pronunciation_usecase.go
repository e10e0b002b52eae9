// Package usecase はpronunciationフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"hanzi_backend/internal/feature/pronunciation/domain"
	"hanzi_backend/internal/feature/pronunciation/domain/entity"
	recognition "hanzi_backend/internal/feature/recognition/domain/entity"
)

const (
	// MaxTextLength は1回の音声合成で扱う最大文字数です。
	MaxTextLength = 100

	cacheKeyPrefix = "audio:"

	// fetchTimeout はまとめられた取得1回あたりの制限時間です。呼び出し元のキャンセルとは独立します。
	fetchTimeout = 20 * time.Second
)

// AudioFetcher は音声合成エンドポイントからMP3を取得します。
type AudioFetcher interface {
	Fetch(ctx context.Context, text string) ([]byte, error)
}

// BlobCache はバイト列のキャッシュです。
type BlobCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReadingDictionary は漢字の辞書上の読みを返します。
type ReadingDictionary interface {
	Readings(text string) []entity.Reading
}

type pronunciationUsecase struct {
	fetcher AudioFetcher
	cache   BlobCache
	dict    ReadingDictionary
	ttl     time.Duration
	sfg     *singleflight.Group
}

// NewPronunciationUsecase はpronunciationUsecaseの新しいインスタンスを生成します。
func NewPronunciationUsecase(fetcher AudioFetcher, cache BlobCache, dict ReadingDictionary, ttl time.Duration) *pronunciationUsecase {
	return &pronunciationUsecase{
		fetcher: fetcher,
		cache:   cache,
		dict:    dict,
		ttl:     ttl,
		sfg:     new(singleflight.Group),
	}
}

// Pronounce はテキストの発音MP3を返します。
// キャッシュに無ければ取得し、同じテキストへの同時要求は1回の取得にまとめます。
func (u *pronunciationUsecase) Pronounce(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, domain.ErrTextTooLong
	}

	key := cacheKeyPrefix + text
	dat, found, err := u.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("audio cache lookup failed", "text", text, "error", err)
	}
	if found {
		return dat, nil
	}

	ch := u.sfg.DoChan(key, func() (any, error) {
		// 最初の呼び出し元がキャンセルしても、待っている他の呼び出し元の取得は続ける
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		byt, err := u.fetcher.Fetch(fctx, text)
		if err != nil {
			return nil, err
		}
		if err := u.cache.Set(fctx, key, byt, u.ttl); err != nil {
			slog.Warn("audio cache store failed", "text", text, "error", err)
		}
		return byt, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, fmt.Errorf("fetch audio for %q: %w", text, r.Err)
		}
		return r.Val.([]byte), nil
	}
}

// Prefetch は各文字と単語全体の音声をキャッシュに読み込みます。
func (u *pronunciationUsecase) Prefetch(ctx context.Context, result []recognition.CharacterInfo) error {
	seen := make(map[string]bool)
	var texts []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			texts = append(texts, s)
		}
	}
	for _, c := range result {
		add(c.Character)
	}
	add(recognition.Word(result))

	var errs []error
	for _, s := range texts {
		if _, err := u.Pronounce(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Readings は漢字ごとの辞書上の読みを返します。
func (u *pronunciationUsecase) Readings(text string) ([]entity.Reading, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, domain.ErrTextTooLong
	}
	return u.dict.Readings(text), nil
}
