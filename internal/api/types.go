// Package api はHTTP APIのリクエスト・レスポンス型を定義します。
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse はエラー応答です。View は認識失敗時にクライアントが戻る画面です。
type ErrorResponse struct {
	Error string `json:"error"`
	View  string `json:"view,omitempty"`
}

// MessageResponse は処理結果のメッセージです。
type MessageResponse struct {
	Message string `json:"message"`
}

// CharacterResponse は1文字分の結果です。
type CharacterResponse struct {
	Character string `json:"character"`
	Pinyin    string `json:"pinyin"`
	AudioURL  string `json:"audio_url"`
}

// RecognitionResponse は認識結果です。
type RecognitionResponse struct {
	Id           *openapi_types.UUID `json:"id,omitempty"`
	Route        string              `json:"route"`
	Word         string              `json:"word"`
	WordAudioURL string              `json:"word_audio_url"`
	Characters   []CharacterResponse `json:"characters"`
	View         string              `json:"view"`
}

// RecognizeRequest はJSONで画像を送る場合のリクエストです。
type RecognizeRequest struct {
	ImageDataURL string `json:"image_data_url" binding:"required"`
}

// SettingsResponse はAPIキーをマスクした設定です。
type SettingsResponse struct {
	UseCustomAPI bool   `json:"use_custom_api"`
	APIURL       string `json:"api_url"`
	APIKey       string `json:"api_key"`
	HasAPIKey    bool   `json:"has_api_key"`
	Model        string `json:"model"`
}

// SettingsRequest は設定の置き換えです。APIKey が省略された場合は保存済みのキーを維持します。
type SettingsRequest struct {
	UseCustomAPI bool    `json:"use_custom_api"`
	APIURL       string  `json:"api_url"`
	APIKey       *string `json:"api_key"`
	Model        string  `json:"model"`
}

// ModelsRequest はモデル一覧の取得要求です。APIKey が空なら保存済みのキーを使います。
type ModelsRequest struct {
	APIURL string `json:"api_url" binding:"required"`
	APIKey string `json:"api_key"`
}

// ModelsResponse はモデルIDの一覧です。
type ModelsResponse struct {
	Models []string `json:"models"`
}

// HistoryItemResponse は履歴の1件です。
type HistoryItemResponse struct {
	Id           openapi_types.UUID  `json:"id"`
	ImageDataURL string              `json:"image_data_url,omitempty"`
	Word         string              `json:"word"`
	Characters   []CharacterResponse `json:"characters"`
	CreatedAt    time.Time           `json:"created_at"`
}

// HistoryListResponse は履歴の一覧（新しい順）です。
type HistoryListResponse struct {
	Items []HistoryItemResponse `json:"items"`
}

// ClearResponse は削除件数です。
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// StatusResponse はバックエンドの準備状況と次に表示する画面です。
type StatusResponse struct {
	Ready       bool   `json:"ready"`
	Route       string `json:"route"`
	NextView    string `json:"next_view"`
	TextEnabled bool   `json:"text_enabled"`
}

// ReadingItem は1文字の辞書上の読みです。先頭が代表的な読みです。
type ReadingItem struct {
	Character string   `json:"character"`
	Readings  []string `json:"readings"`
	AudioURL  string   `json:"audio_url"`
}

// ReadingResponse は辞書のピンインです。
type ReadingResponse struct {
	Text       string        `json:"text"`
	Characters []ReadingItem `json:"characters"`
}
