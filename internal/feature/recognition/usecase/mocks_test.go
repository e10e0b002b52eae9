package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"hanzi_backend/internal/feature/recognition/domain/entity"
	settingsentity "hanzi_backend/internal/feature/settings/domain/entity"
)

// mockDefaultRecognizer はDefaultRecognizerインターフェースのモック実装です。
type mockDefaultRecognizer struct {
	RecognizeFunc  func(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error)
	RecognizeCalls int
}

func (m *mockDefaultRecognizer) Recognize(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error) {
	m.RecognizeCalls++
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, img)
	}
	return nil, errors.New("RecognizeFunc is not implemented")
}

// mockCustomRecognizer はCustomRecognizerインターフェースのモック実装です。
type mockCustomRecognizer struct {
	RecognizeFunc  func(ctx context.Context, img entity.Image, s settingsentity.Settings) ([]entity.CharacterInfo, error)
	RecognizeCalls int
}

func (m *mockCustomRecognizer) Recognize(ctx context.Context, img entity.Image, s settingsentity.Settings) ([]entity.CharacterInfo, error) {
	m.RecognizeCalls++
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, img, s)
	}
	return nil, errors.New("RecognizeFunc is not implemented")
}

type mockTextReader struct {
	ReadTextFunc func(ctx context.Context, img entity.Image) (string, error)
}

func (m *mockTextReader) ReadText(ctx context.Context, img entity.Image) (string, error) {
	if m.ReadTextFunc != nil {
		return m.ReadTextFunc(ctx, img)
	}
	return "", errors.New("ReadTextFunc is not implemented")
}

type mockAnnotator struct {
	AnnotateFunc func(text string) []entity.CharacterInfo
}

func (m *mockAnnotator) Annotate(text string) []entity.CharacterInfo {
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(text)
	}
	return nil
}

type mockSettingsProvider struct {
	GetFunc func(ctx context.Context) (settingsentity.Settings, error)
}

func (m *mockSettingsProvider) Get(ctx context.Context) (settingsentity.Settings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return settingsentity.Settings{}, nil
}

type mockHistoryRecorder struct {
	RecordFunc  func(ctx context.Context, imageDataURL string, result []entity.CharacterInfo) (uuid.UUID, error)
	RecordCalls int
}

func (m *mockHistoryRecorder) Record(ctx context.Context, imageDataURL string, result []entity.CharacterInfo) (uuid.UUID, error) {
	m.RecordCalls++
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, imageDataURL, result)
	}
	return uuid.Nil, errors.New("RecordFunc is not implemented")
}

// mockAudioPrefetcher は別ゴルーチンから呼ばれるためロックで保護します。
type mockAudioPrefetcher struct {
	mu       sync.Mutex
	received [][]entity.CharacterInfo
	err      error
}

func (m *mockAudioPrefetcher) Prefetch(_ context.Context, result []entity.CharacterInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, result)
	return m.err
}

func (m *mockAudioPrefetcher) calls() [][]entity.CharacterInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received
}
