package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanzi_backend/internal/feature/pronunciation/domain"
	"hanzi_backend/internal/feature/pronunciation/domain/entity"
	"hanzi_backend/internal/feature/pronunciation/usecase"
	recognition "hanzi_backend/internal/feature/recognition/domain/entity"
)

// mockFetcher はAudioFetcherインターフェースのモック実装です。
type mockFetcher struct {
	FetchFunc func(ctx context.Context, text string) ([]byte, error)
	calls     atomic.Int32
	mu        sync.Mutex
	texts     []string
}

func (m *mockFetcher) Fetch(ctx context.Context, text string) ([]byte, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	return m.FetchFunc(ctx, text)
}

// memCache はBlobCacheの簡易実装です。
type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

type mockDictionary struct{}

func (mockDictionary) Readings(text string) []entity.Reading {
	return []entity.Reading{{Character: text, Pinyin: []string{"māo"}}}
}

func TestPronunciationUsecase_Pronounce_Caches(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{FetchFunc: func(ctx context.Context, text string) ([]byte, error) {
		return []byte("mp3:" + text), nil
	}}
	cache := newMemCache()
	uc := usecase.NewPronunciationUsecase(fetcher, cache, mockDictionary{}, time.Hour)

	for range 3 {
		got, err := uc.Pronounce(context.Background(), " 猫 ")
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3:猫"), got)
	}
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Contains(t, cache.data, "audio:猫")
}

func TestPronunciationUsecase_Pronounce_Coalesces(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	fetcher := &mockFetcher{FetchFunc: func(ctx context.Context, text string) ([]byte, error) {
		<-release
		return []byte("mp3"), nil
	}}
	uc := usecase.NewPronunciationUsecase(fetcher, newMemCache(), mockDictionary{}, time.Hour)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := uc.Pronounce(context.Background(), "狗")
			assert.NoError(t, err)
			assert.Equal(t, []byte("mp3"), got)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, fetcher.calls.Load(), int32(5))
	assert.GreaterOrEqual(t, fetcher.calls.Load(), int32(1))
}

func TestPronunciationUsecase_Pronounce_FirstCallerCancel(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := &mockFetcher{FetchFunc: func(ctx context.Context, text string) ([]byte, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("mp3:" + text), nil
	}}
	cache := newMemCache()
	uc := usecase.NewPronunciationUsecase(fetcher, cache, mockDictionary{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := uc.Pronounce(ctx, "鱼")
		firstErr <- err
	}()
	<-started

	type result struct {
		dat []byte
		err error
	}
	second := make(chan result, 1)
	go func() {
		dat, err := uc.Pronounce(context.Background(), "鱼")
		second <- result{dat, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	r := <-second
	require.NoError(t, r.err)
	assert.Equal(t, []byte("mp3:鱼"), r.dat)
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Contains(t, cache.data, "audio:鱼")
}

func TestPronunciationUsecase_Pronounce_Errors(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{FetchFunc: func(ctx context.Context, text string) ([]byte, error) {
		return nil, errors.New("tts down")
	}}
	cache := newMemCache()
	uc := usecase.NewPronunciationUsecase(fetcher, cache, mockDictionary{}, time.Hour)

	_, err := uc.Pronounce(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyText)

	_, err = uc.Pronounce(context.Background(), strings.Repeat("猫", usecase.MaxTextLength+1))
	assert.ErrorIs(t, err, domain.ErrTextTooLong)

	_, err = uc.Pronounce(context.Background(), "猫")
	assert.ErrorContains(t, err, "tts down")
	assert.Empty(t, cache.data)
}

func TestPronunciationUsecase_Pronounce_CacheErrorFallsThrough(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{FetchFunc: func(ctx context.Context, text string) ([]byte, error) {
		return []byte("mp3"), nil
	}}
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	uc := usecase.NewPronunciationUsecase(fetcher, cache, mockDictionary{}, time.Hour)

	got, err := uc.Pronounce(context.Background(), "猫")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), got)
}

func TestPronunciationUsecase_Prefetch(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{FetchFunc: func(ctx context.Context, text string) ([]byte, error) {
		if text == "果" {
			return nil, errors.New("boom")
		}
		return []byte("mp3"), nil
	}}
	cache := newMemCache()
	uc := usecase.NewPronunciationUsecase(fetcher, cache, mockDictionary{}, time.Hour)

	result := []recognition.CharacterInfo{{Character: "苹", Pinyin: "píng"}, {Character: "果", Pinyin: "guǒ"}}
	err := uc.Prefetch(context.Background(), result)
	assert.ErrorContains(t, err, "boom")

	assert.Equal(t, []string{"苹", "果", "苹果"}, fetcher.texts)
	assert.Contains(t, cache.data, "audio:苹")
	assert.Contains(t, cache.data, "audio:苹果")

	// 1文字の単語は重複して取得しない
	fetcher.texts = nil
	require.NoError(t, uc.Prefetch(context.Background(), []recognition.CharacterInfo{{Character: "猫"}}))
	assert.Equal(t, []string{"猫"}, fetcher.texts)
}

func TestPronunciationUsecase_Readings(t *testing.T) {
	t.Parallel()

	uc := usecase.NewPronunciationUsecase(nil, newMemCache(), mockDictionary{}, time.Hour)

	got, err := uc.Readings("猫")
	require.NoError(t, err)
	assert.Equal(t, []entity.Reading{{Character: "猫", Pinyin: []string{"māo"}}}, got)

	_, err = uc.Readings("")
	assert.ErrorIs(t, err, domain.ErrEmptyText)
}
