// Package handler はmodelcatalogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"hanzi_backend/internal/api"
	"hanzi_backend/internal/feature/modelcatalog/usecase"
	"hanzi_backend/internal/feature/recognition/domain"
)

// ModelCatalogUsecase はモデル一覧取得のユースケースインターフェースを定義します。
type ModelCatalogUsecase interface {
	ListModels(ctx context.Context, apiURL, apiKey string) ([]string, error)
}

// ModelCatalogHandler はモデル一覧のHTTPリクエストを処理します。
type ModelCatalogHandler struct {
	uc ModelCatalogUsecase
}

// NewModelCatalogHandler はModelCatalogHandlerの新しいインスタンスを生成します。
func NewModelCatalogHandler(uc ModelCatalogUsecase) *ModelCatalogHandler {
	return &ModelCatalogHandler{uc: uc}
}

// List は互換エンドポイントで利用できるモデルIDを返します。
//
// エンドポイント: POST /v1/models
func (h *ModelCatalogHandler) List(c *gin.Context) {
	var req api.ModelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("モデル一覧リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "请先填写 API 地址和 API Key。"})
		return
	}

	models, err := h.uc.ListModels(c.Request.Context(), req.APIURL, req.APIKey)
	if err != nil {
		status, msg := classify(err)
		slog.Warn("モデル一覧の取得に失敗", "error", err, "api_url", req.APIURL)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, api.ModelsResponse{Models: models})
}

func classify(err error) (int, string) {
	var he *domain.HTTPError
	switch {
	case errors.Is(err, usecase.ErrMissingURL), errors.Is(err, usecase.ErrMissingKey):
		return http.StatusBadRequest, "请先填写 API 地址和 API Key。"
	case errors.As(err, &he):
		return http.StatusBadGateway, fmt.Sprintf("请求失败 (%d): %s. 请检查 API 地址和 Key。", he.StatusCode, he.Status)
	default:
		return http.StatusBadGateway, "获取模型列表失败，请检查网络连接和API地址。"
	}
}
