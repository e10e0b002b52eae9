// Package handler はrecognitionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hanzi_backend/internal/api"
	captureusecase "hanzi_backend/internal/feature/capture/usecase"
	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/usecase"
)

// FlowUsecase は撮影から結果までの処理のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type FlowUsecase interface {
	Status(ctx context.Context) usecase.Status
	Recognize(ctx context.Context, img entity.Image) (usecase.Outcome, error)
	ReadText(ctx context.Context, img entity.Image) (usecase.Outcome, error)
}

// Capturer はアップロードされた画像を認識用に変換します。
type Capturer interface {
	Snapshot(data []byte) (entity.Image, error)
	FromDataURL(dataURL string) (entity.Image, error)
}

// RecognitionHandler は認識関連のHTTPリクエストを処理します。
type RecognitionHandler struct {
	flow     FlowUsecase
	capturer Capturer
	maxBytes int64
}

// NewRecognitionHandler はRecognitionHandlerの新しいインスタンスを生成します。
// maxUploadBytes は画像ファイル1枚の上限です。
func NewRecognitionHandler(flow FlowUsecase, capturer Capturer, maxUploadBytes int64) *RecognitionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = captureusecase.MaxImageSize
	}
	return &RecognitionHandler{flow: flow, capturer: capturer, maxBytes: maxUploadBytes}
}

// Status はバックエンドの準備状況と次に表示する画面を返します。
//
// エンドポイント: GET /v1/status
func (h *RecognitionHandler) Status(c *gin.Context) {
	st := h.flow.Status(c.Request.Context())
	c.JSON(http.StatusOK, api.StatusResponse{
		Ready:       st.Ready,
		Route:       string(st.Route),
		NextView:    string(st.NextView),
		TextEnabled: st.TextEnabled,
	})
}

// Recognize は画像の被写体を中国語の文字とピンインで返します。
//
// エンドポイント: POST /v1/recognize
// Content-Type: multipart/form-data（フィールド: image）または application/json（image_data_url）
func (h *RecognitionHandler) Recognize(c *gin.Context) {
	h.handle(c, h.flow.Recognize)
}

// RecognizeText は画像に印刷された中国語を読み取り、ピンインを付けて返します。
//
// エンドポイント: POST /v1/recognize/text
func (h *RecognitionHandler) RecognizeText(c *gin.Context) {
	h.handle(c, h.flow.ReadText)
}

func (h *RecognitionHandler) handle(c *gin.Context, run func(ctx context.Context, img entity.Image) (usecase.Outcome, error)) {
	img, status, msg := h.readImage(c)
	if status != 0 {
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	out, err := run(c.Request.Context(), img)
	if err != nil {
		var re *usecase.RecognitionError
		if !errors.As(err, &re) {
			re = usecase.Translate(err)
		}
		slog.Warn("認識に失敗", "route", out.Route, "kind", re.Kind, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: re.Message, View: string(out.View)})
		return
	}

	c.JSON(http.StatusOK, ToRecognitionResponse(out))
}

// readImage はリクエストから画像を取り出します。失敗時は status に HTTP ステータスを返します。
func (h *RecognitionHandler) readImage(c *gin.Context) (entity.Image, int, string) {
	// data URL は base64 で約 4/3 倍になる
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes*4/3+64*1024)

	var (
		img entity.Image
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, ferr := h.readFormFile(c)
		if ferr != nil {
			slog.Warn("画像ファイルの取得に失敗", "error", ferr, "remote_addr", c.ClientIP())
			var mbe *http.MaxBytesError
			if errors.As(ferr, &mbe) {
				return entity.Image{}, http.StatusRequestEntityTooLarge, "图片过大，请上传 10MB 以内的图片。"
			}
			return entity.Image{}, http.StatusBadRequest, "请上传图片。"
		}
		if int64(len(data)) > h.maxBytes {
			return entity.Image{}, http.StatusRequestEntityTooLarge, "图片过大，请上传 10MB 以内的图片。"
		}
		img, err = h.capturer.Snapshot(data)
	} else {
		var req api.RecognizeRequest
		if berr := c.ShouldBindJSON(&req); berr != nil {
			slog.Warn("認識リクエストのバリデーションに失敗", "error", berr, "remote_addr", c.ClientIP())
			var mbe *http.MaxBytesError
			if errors.As(berr, &mbe) {
				return entity.Image{}, http.StatusRequestEntityTooLarge, "图片过大，请上传 10MB 以内的图片。"
			}
			return entity.Image{}, http.StatusBadRequest, "请上传图片。"
		}
		img, err = h.capturer.FromDataURL(req.ImageDataURL)
	}

	if err != nil {
		slog.Warn("画像の変換に失敗", "error", err, "remote_addr", c.ClientIP())
		if errors.Is(err, captureusecase.ErrImageTooLarge) {
			return entity.Image{}, http.StatusRequestEntityTooLarge, "图片过大，请上传 10MB 以内的图片。"
		}
		return entity.Image{}, http.StatusBadRequest, "无法读取图片，请换一张照片重试。"
	}
	return img, 0, ""
}

func (h *RecognitionHandler) readFormFile(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, err
	}
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()
	return io.ReadAll(io.LimitReader(f, h.maxBytes+1))
}

// ToRecognitionResponse は処理結果をAPIレスポンスに変換します。
func ToRecognitionResponse(out usecase.Outcome) api.RecognitionResponse {
	return api.RecognitionResponse{
		Id:           out.ID,
		Route:        string(out.Route),
		Word:         out.Word,
		WordAudioURL: api.AudioURL(out.Word),
		Characters:   ToCharacterResponses(out.Characters),
		View:         string(out.View),
	}
}

// ToCharacterResponses は文字ごとに発音URLを付けて変換します。
func ToCharacterResponses(chars []entity.CharacterInfo) []api.CharacterResponse {
	out := make([]api.CharacterResponse, 0, len(chars))
	for _, ch := range chars {
		out = append(out, api.CharacterResponse{
			Character: ch.Character,
			Pinyin:    ch.Pinyin,
			AudioURL:  api.AudioURL(ch.Character),
		})
	}
	return out
}
