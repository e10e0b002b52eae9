// Package usecase はrecognitionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hanzi_backend/internal/feature/recognition/domain"
	"hanzi_backend/internal/feature/recognition/domain/entity"
	settingsentity "hanzi_backend/internal/feature/settings/domain/entity"
)

// DefaultTimeout は外部AI呼び出し1回あたりの上限時間です。
const DefaultTimeout = 30 * time.Second

// DefaultRecognizer は組み込みバックエンド（Gemini）への呼び出しを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DefaultRecognizer interface {
	Recognize(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error)
}

// CustomRecognizer はOpenAI互換エンドポイントへの呼び出しを抽象化します。
type CustomRecognizer interface {
	Recognize(ctx context.Context, img entity.Image, s settingsentity.Settings) ([]entity.CharacterInfo, error)
}

// TextReader は写真に写った文字列を読み取ります。
type TextReader interface {
	ReadText(ctx context.Context, img entity.Image) (string, error)
}

// Annotator は漢字列に辞書のピンインを付与します。
type Annotator interface {
	Annotate(text string) []entity.CharacterInfo
}

// recognitionUsecase は画像から文字とピンインを得る処理をまとめます。
type recognitionUsecase struct {
	def       DefaultRecognizer // nil の場合は未設定
	custom    CustomRecognizer
	reader    TextReader // nil の場合は文字読み取りモード無効
	annotator Annotator
	timeout   time.Duration
}

// NewRecognitionUsecase はrecognitionUsecaseの新しいインスタンスを生成します。
// def と reader は nil を許容します。
func NewRecognitionUsecase(def DefaultRecognizer, custom CustomRecognizer, reader TextReader, annotator Annotator, timeout time.Duration) *recognitionUsecase {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &recognitionUsecase{def: def, custom: custom, reader: reader, annotator: annotator, timeout: timeout}
}

// Route は設定に応じた送信先を返します。
func (u *recognitionUsecase) Route(s settingsentity.Settings) entity.Route {
	if s.UsesCustomAPI() {
		return entity.RouteCustom
	}
	return entity.RouteDefault
}

// Ready は設定のもとで認識を実行できるかを返します。
func (u *recognitionUsecase) Ready(s settingsentity.Settings) bool {
	return s.UsesCustomAPI() || u.def != nil
}

// TextEnabled は文字読み取りモードが使えるかを返します。
func (u *recognitionUsecase) TextEnabled() bool {
	return u.reader != nil && u.annotator != nil
}

// Identify は画像の被写体を中国語の文字とピンインの列に変換します。
// 失敗時は常に *RecognitionError を返します。
func (u *recognitionUsecase) Identify(ctx context.Context, img entity.Image, s settingsentity.Settings) ([]entity.CharacterInfo, error) {
	route := u.Route(s)
	result, err := u.identify(ctx, img, s, route)
	if err == nil {
		err = Validate(result)
	}
	if err != nil {
		re := Translate(err)
		slog.Error("recognition failed", "route", route, "model", s.Model, "kind", re.Kind, "error", err)
		return nil, re
	}
	slog.Info("recognition succeeded", "route", route, "characters", len(result))
	return result, nil
}

func (u *recognitionUsecase) identify(ctx context.Context, img entity.Image, s settingsentity.Settings, route entity.Route) ([]entity.CharacterInfo, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var (
		result []entity.CharacterInfo
		err    error
	)
	switch route {
	case entity.RouteCustom:
		result, err = u.custom.Recognize(ctx, img, s)
	default:
		if u.def == nil {
			return nil, domain.ErrNotConfigured
		}
		result, err = u.def.Recognize(ctx, img)
	}
	return result, timeoutAsNetwork(err)
}

// ReadText は写真内の印刷された文字を読み取り、辞書ピンインを付与します。
func (u *recognitionUsecase) ReadText(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error) {
	result, err := u.readText(ctx, img)
	if err == nil {
		err = Validate(result)
	}
	if err != nil {
		re := Translate(err)
		slog.Error("text reading failed", "kind", re.Kind, "error", err)
		return nil, re
	}
	return result, nil
}

func (u *recognitionUsecase) readText(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error) {
	if !u.TextEnabled() {
		return nil, domain.ErrNotConfigured
	}
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	text, err := u.reader.ReadText(ctx, img)
	if err != nil {
		return nil, timeoutAsNetwork(err)
	}
	return u.annotator.Annotate(text), nil
}

// timeoutAsNetwork はタイムアウトをネットワーク障害として扱えるように包みます。
func timeoutAsNetwork(err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("network request timed out: %w", err)
	}
	return err
}
