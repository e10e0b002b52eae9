// Package openai はOpenAI互換API（/chat/completions, /models）のクライアントを提供します。
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"hanzi_backend/internal/feature/recognition/domain"
	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/usecase"
	settingsentity "hanzi_backend/internal/feature/settings/domain/entity"
)

const (
	// Prompt は互換APIへ送る指示文です。
	Prompt = "Identify the main subject in this image. Respond with ONLY a JSON array where each object contains a 'character' and its corresponding 'pinyin' with tone marks. The name should be simple and common, between 2 to 4 characters. For example, for 'apple', respond with `[{\"character\":\"苹\",\"pinyin\":\"píng\"},{\"character\":\"果\",\"pinyin\":\"guǒ\"}]`. Do not include any other text, explanation, or markdown formatting."

	maxTokens = 300

	// エラーログに残すレスポンスボディの上限
	maxErrorBody = 4096
)

// Client はOpenAI互換エンドポイントを呼び出します。
// モデル一覧（GET）はリトライし、チャット補完（POST）はリトライしません。
type Client struct {
	rc *retryablehttp.Client
}

// ClientがCustomRecognizerを実装していることをコンパイル時に検証します。
var _ usecase.CustomRecognizer = (*Client)(nil)

// NewClient はClientの新しいインスタンスを生成します。
func NewClient(rc *retryablehttp.Client) *Client {
	return &Client{rc: rc}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Recognize は画像を /chat/completions に送り、応答を正規化して返します。
func (c *Client) Recognize(ctx context.Context, img entity.Image, s settingsentity.Settings) ([]entity.CharacterInfo, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: img.DataURL()}},
			},
		}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint()+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := c.rc.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if err := checkStatus(resp, "chat completion"); err != nil {
		return nil, err
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: completion envelope: %v", domain.ErrMalformedJSON, err)
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return nil, domain.ErrInvalidResponseShape
	}
	content := envelope.Choices[0].Message.Content

	text, source := ExtractJSON(content)
	switch source {
	case SourceFence:
		slog.Warn("custom backend wrapped its reply in markdown", "model", s.Model)
	case SourceRaw:
		slog.Warn("no JSON array found in custom backend reply", "model", s.Model)
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}

	result, err := usecase.Normalize(parsed)
	if err != nil {
		slog.Warn("custom backend reply has an invalid shape", "model", s.Model, "reply", text, "error", err)
		return nil, err
	}
	return result, nil
}

// ListModels は GET {apiURL}/models を呼び出してモデルIDの一覧を返します。
// {data:[...]} と素の配列の両方を受け付け、先頭要素に文字列の id が無ければ空を返します。
func (c *Client) ListModels(ctx context.Context, apiURL, apiKey string) ([]string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, settingsentity.CleanURL(apiURL)+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create models request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.rc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if err := checkStatus(resp, "list models"); err != nil {
		return nil, err
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: models: %v", domain.ErrMalformedJSON, err)
	}
	return modelIDs(payload), nil
}

func modelIDs(payload any) []string {
	var list []any
	switch v := payload.(type) {
	case map[string]any:
		list, _ = v["data"].([]any)
	case []any:
		list = v
	}
	if len(list) == 0 {
		return []string{}
	}
	first, _ := list[0].(map[string]any)
	if _, ok := first["id"].(string); !ok {
		return []string{}
	}

	// 先頭要素の形がすべての要素に当てはまるものとして扱う
	ids := make([]string, 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		id, _ := obj["id"].(string)
		ids = append(ids, id)
	}
	return ids
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	slog.Error("custom API returned an error", "op", op, "status", resp.StatusCode, "body", string(body))
	return &domain.HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
}
