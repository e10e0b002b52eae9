// Package gemini はGoogle Gemini APIを使用した組み込み認識バックエンドを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"hanzi_backend/internal/feature/recognition/domain"
	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// Prompt は画像と一緒に送る指示文です。
	Prompt = "Identify the main subject in this image. Respond with ONLY a JSON array where each object contains a 'character' and its corresponding 'pinyin' with tone marks. The name should be simple and common, between 2 to 4 characters. For example, for 'apple', respond with `[{\"character\":\"苹\",\"pinyin\":\"píng\"},{\"character\":\"果\",\"pinyin\":\"guǒ\"}]`. Do not include any other text or explanation."
)

// responseSchema は {character, pinyin} の配列で、両フィールドとも必須です。
var responseSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"character": {Type: genai.TypeString},
			"pinyin":    {Type: genai.TypeString},
		},
		Required: []string{"character", "pinyin"},
	},
}

// GeminiRecognizer はGemini APIで画像の被写体を文字とピンインに変換します。
type GeminiRecognizer struct {
	client *genai.Client
	model  string
}

// GeminiRecognizerがDefaultRecognizerを実装していることをコンパイル時に検証します。
var _ usecase.DefaultRecognizer = (*GeminiRecognizer)(nil)

// Options はGeminiRecognizerの生成オプションです。
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string       // テスト用。空なら既定のエンドポイント
	HTTPClient *http.Client // nil なら genai の既定
}

// NewGeminiRecognizer はAPIキーを使用してGeminiRecognizerの新しいインスタンスを生成します。
// APIキーが空の場合は domain.ErrNotConfigured を返します。
func NewGeminiRecognizer(ctx context.Context, opts Options) (*GeminiRecognizer, error) {
	if opts.APIKey == "" {
		return nil, domain.ErrNotConfigured
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiRecognizer{client: client, model: model}, nil
}

// Model は使用するモデル名を返します。
func (g *GeminiRecognizer) Model() string { return g.model }

// Recognize は画像と指示文を送信し、スキーマ制約付きのJSON応答を返します。
func (g *GeminiRecognizer) Recognize(ctx context.Context, img entity.Image) ([]entity.CharacterInfo, error) {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, mimeType),
			genai.NewPartFromText(Prompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}
	return decodeCharacters(resp.Text())
}

// decodeCharacters はスキーマ制約付きの応答テキストをそのまま解釈します。正規化は行いません。
func decodeCharacters(text string) ([]entity.CharacterInfo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyResponse
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	return usecase.Strict(parsed)
}
