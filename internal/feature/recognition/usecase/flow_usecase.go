package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hanzi_backend/internal/feature/recognition/domain"
	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/domain/viewstate"
	settingsentity "hanzi_backend/internal/feature/settings/domain/entity"
)

const prefetchTimeout = time.Minute

// Identifier は recognitionUsecase が提供する操作です。
type Identifier interface {
	Route(s settingsentity.Settings) entity.Route
	Ready(s settingsentity.Settings) bool
	TextEnabled() bool
	Identify(ctx context.Context, img entity.Image, s settingsentity.Settings) ([]entity.CharacterInfo, error)
	ReadText(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error)
}

// SettingsProvider は保存済みの設定を返します。
type SettingsProvider interface {
	Get(ctx context.Context) (settingsentity.Settings, error)
}

// HistoryRecorder は成功した認識結果を履歴に追記します。
type HistoryRecorder interface {
	Record(ctx context.Context, imageDataURL string, result []entity.CharacterInfo) (uuid.UUID, error)
}

// AudioPrefetcher は結果の発音音声を事前に取得します。
type AudioPrefetcher interface {
	Prefetch(ctx context.Context, result []entity.CharacterInfo) error
}

// Outcome は1回の撮影に対する処理結果です。
type Outcome struct {
	ID         *uuid.UUID // 履歴に保存できなかった場合は nil
	Route      entity.Route
	Characters []entity.CharacterInfo
	Word       string
	View       viewstate.View
}

// Status はクライアントが次に表示すべき画面です。
type Status struct {
	Ready       bool
	Route       entity.Route
	NextView    viewstate.View
	TextEnabled bool
}

// flowUsecase は撮影から結果表示までの一連の処理を統括します。
type flowUsecase struct {
	rec      Identifier
	settings SettingsProvider
	history  HistoryRecorder // nil 可
	audio    AudioPrefetcher // nil 可

	wg sync.WaitGroup
}

// NewFlowUsecase はflowUsecaseの新しいインスタンスを生成します。
func NewFlowUsecase(rec Identifier, settings SettingsProvider, history HistoryRecorder, audio AudioPrefetcher) *flowUsecase {
	return &flowUsecase{rec: rec, settings: settings, history: history, audio: audio}
}

// Status は現在の設定でのバックエンド準備状況と次の画面を返します。
func (f *flowUsecase) Status(ctx context.Context) Status {
	s := f.loadSettings(ctx)
	ready := f.rec.Ready(s)
	return Status{
		Ready:       ready,
		Route:       f.rec.Route(s),
		NextView:    viewstate.New().Start(ready),
		TextEnabled: f.rec.TextEnabled(),
	}
}

// Recognize は画像を認識し、履歴保存と音声の事前取得まで行います。
// 失敗時も Outcome.View に次の画面が入ります。
func (f *flowUsecase) Recognize(ctx context.Context, img entity.Image) (Outcome, error) {
	s := f.loadSettings(ctx)
	route := f.rec.Route(s)

	m := viewstate.New()
	if m.Start(f.rec.Ready(s)) != viewstate.Camera {
		return Outcome{Route: route, View: m.View()}, Translate(domain.ErrNotConfigured)
	}
	return f.run(ctx, m, img, route, func(ctx context.Context) ([]entity.CharacterInfo, error) {
		return f.rec.Identify(ctx, img, s)
	})
}

// ReadText は写真内の文字を読み取り、Recognize と同じ後処理を行います。
func (f *flowUsecase) ReadText(ctx context.Context, img entity.Image) (Outcome, error) {
	m := viewstate.New()
	m.Start(true)
	return f.run(ctx, m, img, entity.RouteText, func(ctx context.Context) ([]entity.CharacterInfo, error) {
		return f.rec.ReadText(ctx, img)
	})
}

func (f *flowUsecase) run(ctx context.Context, m *viewstate.Machine, img entity.Image, route entity.Route,
	call func(ctx context.Context) ([]entity.CharacterInfo, error)) (Outcome, error) {
	if err := m.BeginCapture(); err != nil {
		return Outcome{Route: route, View: m.View()}, Translate(err)
	}

	result, err := call(ctx)
	if err != nil {
		re := Translate(err)
		_ = m.Fail(re.Message)
		return Outcome{Route: route, View: m.View()}, re
	}
	_ = m.Succeed()

	out := Outcome{
		Route:      route,
		Characters: result,
		Word:       entity.Word(result),
		View:       m.View(),
	}
	if f.history != nil {
		id, err := f.history.Record(ctx, img.DataURL(), result)
		if err != nil {
			slog.Warn("failed to record history", "error", err)
		} else {
			out.ID = &id
		}
	}
	f.prefetch(result)
	return out, nil
}

// prefetch は応答を待たせないよう別ゴルーチンで音声を取得します。
func (f *flowUsecase) prefetch(result []entity.CharacterInfo) {
	if f.audio == nil {
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
		defer cancel()
		if err := f.audio.Prefetch(ctx, result); err != nil {
			slog.Warn("audio prefetch failed", "word", entity.Word(result), "error", err)
		}
	}()
}

// Wait は実行中の事前取得がすべて終わるまで待ちます。
func (f *flowUsecase) Wait() {
	f.wg.Wait()
}

func (f *flowUsecase) loadSettings(ctx context.Context) settingsentity.Settings {
	s, err := f.settings.Get(ctx)
	if err != nil {
		slog.Warn("failed to load settings, using defaults", "error", err)
		return settingsentity.Settings{}
	}
	return s
}
