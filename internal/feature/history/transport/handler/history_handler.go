// Package handler はhistoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hanzi_backend/internal/api"
	"hanzi_backend/internal/feature/history/domain"
	"hanzi_backend/internal/feature/history/domain/entity"
)

// HistoryUsecase は履歴のユースケースインターフェースを定義します。
type HistoryUsecase interface {
	List(ctx context.Context, limit int) ([]entity.Item, error)
	Get(ctx context.Context, id uuid.UUID) (entity.Item, error)
	Clear(ctx context.Context) (int64, error)
}

// HistoryHandler は履歴のHTTPリクエストを処理します。
type HistoryHandler struct {
	uc HistoryUsecase
}

// NewHistoryHandler はHistoryHandlerの新しいインスタンスを生成します。
func NewHistoryHandler(uc HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// List は履歴を新しい順に返します。画像は include_images=true の場合のみ含めます。
//
// エンドポイント: GET /v1/history?limit=50&include_images=false
func (h *HistoryHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit 参数不正确。"})
			return
		}
		limit = n
	}
	includeImages := c.Query("include_images") == "true"

	items, err := h.uc.List(c.Request.Context(), limit)
	if err != nil {
		slog.Error("履歴の取得に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "读取历史记录失败。"})
		return
	}

	out := make([]api.HistoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toResponse(it, includeImages))
	}
	c.JSON(http.StatusOK, api.HistoryListResponse{Items: out})
}

// Get は履歴を1件返します。
//
// エンドポイント: GET /v1/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "记录 ID 不正确。"})
		return
	}

	item, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "找不到该记录。"})
			return
		}
		slog.Error("履歴の取得に失敗", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "读取历史记录失败。"})
		return
	}
	c.JSON(http.StatusOK, toResponse(item, true))
}

// Clear は履歴をすべて削除します。
//
// エンドポイント: DELETE /v1/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	n, err := h.uc.Clear(c.Request.Context())
	if err != nil {
		slog.Error("履歴の削除に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "清除历史记录失败。"})
		return
	}
	slog.Info("履歴を削除", "removed", n)
	c.JSON(http.StatusOK, api.ClearResponse{Removed: n})
}

func toResponse(it entity.Item, includeImage bool) api.HistoryItemResponse {
	chars := make([]api.CharacterResponse, 0, len(it.Result))
	for _, ch := range it.Result {
		chars = append(chars, api.CharacterResponse{
			Character: ch.Character,
			Pinyin:    ch.Pinyin,
			AudioURL:  api.AudioURL(ch.Character),
		})
	}
	resp := api.HistoryItemResponse{
		Id:         it.ID,
		Word:       it.Word(),
		Characters: chars,
		CreatedAt:  it.CreatedAt,
	}
	if includeImage {
		resp.ImageDataURL = it.ImageDataURL
	}
	return resp
}
