// Package handler はsettingsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"hanzi_backend/internal/api"
	"hanzi_backend/internal/feature/settings/domain/entity"
	"hanzi_backend/internal/feature/settings/usecase"
)

// SettingsUsecase は設定のユースケースインターフェースを定義します。
type SettingsUsecase interface {
	Get(ctx context.Context) (entity.Settings, error)
	Update(ctx context.Context, p usecase.Patch) (entity.Settings, error)
}

// SettingsHandler は設定のHTTPリクエストを処理します。
type SettingsHandler struct {
	uc SettingsUsecase
}

// NewSettingsHandler はSettingsHandlerの新しいインスタンスを生成します。
func NewSettingsHandler(uc SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// Get は現在の設定をAPIキーをマスクして返します。
//
// エンドポイント: GET /v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.uc.Get(c.Request.Context())
	if err != nil {
		slog.Error("設定の取得に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "读取设置失败，请稍后重试。"})
		return
	}
	c.JSON(http.StatusOK, toResponse(s))
}

// Put は設定を置き換えます。api_key を省略すると保存済みのキーを維持します。
//
// エンドポイント: PUT /v1/settings
func (h *SettingsHandler) Put(c *gin.Context) {
	var req api.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("設定リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "设置格式不正确。"})
		return
	}

	s, err := h.uc.Update(c.Request.Context(), usecase.Patch{
		UseCustomAPI: req.UseCustomAPI,
		APIURL:       req.APIURL,
		APIKey:       req.APIKey,
		Model:        req.Model,
	})
	if err != nil {
		slog.Error("設定の保存に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "保存设置失败，请稍后重试。"})
		return
	}
	c.JSON(http.StatusOK, toResponse(s))
}

func toResponse(s entity.Settings) api.SettingsResponse {
	return api.SettingsResponse{
		UseCustomAPI: s.UseCustomAPI,
		APIURL:       s.APIURL,
		APIKey:       s.MaskedKey(),
		HasAPIKey:    s.APIKey != "",
		Model:        s.Model,
	}
}
