// Package handler はpronunciationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"hanzi_backend/internal/api"
	"hanzi_backend/internal/feature/pronunciation/domain"
	"hanzi_backend/internal/feature/pronunciation/domain/entity"
)

// PronunciationUsecase は発音のユースケースインターフェースを定義します。
type PronunciationUsecase interface {
	Pronounce(ctx context.Context, text string) ([]byte, error)
	Readings(text string) ([]entity.Reading, error)
}

// PronunciationHandler は発音音声と読みのHTTPリクエストを処理します。
type PronunciationHandler struct {
	uc PronunciationUsecase
}

// NewPronunciationHandler はPronunciationHandlerの新しいインスタンスを生成します。
func NewPronunciationHandler(uc PronunciationUsecase) *PronunciationHandler {
	return &PronunciationHandler{uc: uc}
}

// Audio はテキストの発音をMP3で返します。
//
// エンドポイント: GET /v1/pronunciation?text=苹果
func (h *PronunciationHandler) Audio(c *gin.Context) {
	text := c.Query("text")
	dat, err := h.uc.Pronounce(c.Request.Context(), text)
	if err != nil {
		if msg, ok := badText(err); ok {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msg})
			return
		}
		slog.Error("音声の取得に失敗", "error", err, "text", text)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "获取发音失败，请稍后重试。"})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "audio/mpeg", dat)
}

// Readings は漢字ごとの辞書上のピンインを返します。
//
// エンドポイント: GET /v1/readings?text=中国
func (h *PronunciationHandler) Readings(c *gin.Context) {
	text := c.Query("text")
	rs, err := h.uc.Readings(text)
	if err != nil {
		if msg, ok := badText(err); ok {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msg})
			return
		}
		slog.Error("読みの取得に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "查询拼音失败。"})
		return
	}

	items := make([]api.ReadingItem, 0, len(rs))
	for _, r := range rs {
		items = append(items, api.ReadingItem{
			Character: r.Character,
			Readings:  r.Pinyin,
			AudioURL:  api.AudioURL(r.Character),
		})
	}
	c.JSON(http.StatusOK, api.ReadingResponse{Text: text, Characters: items})
}

func badText(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return "请输入要朗读的文字。", true
	case errors.Is(err, domain.ErrTextTooLong):
		return "文字过长。", true
	}
	return "", false
}
