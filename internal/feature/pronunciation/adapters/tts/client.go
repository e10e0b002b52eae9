// Package tts は音声合成エンドポイントからMP3を取得します。
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultBaseURL は既定の音声合成エンドポイントです。
	DefaultBaseURL = "https://translate.google.com/translate_tts"
	// DefaultLanguage は読み上げ言語です。
	DefaultLanguage = "zh-CN"

	maxAudioSize = 2 * 1024 * 1024
)

// ErrNoAudio is returned when the endpoint answers with an empty body.
var ErrNoAudio = errors.New("tts: empty audio")

// HTTPError represents a HTTP error.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (r HTTPError) Error() string {
	return fmt.Sprintf("tts HTTP error: %s", r.Status)
}

// Client fetches pronunciation audio.
type Client struct {
	rc       *retryablehttp.Client
	baseURL  string
	language string
}

// New returns a new Client. Empty baseURL and language fall back to the defaults.
func New(rc *retryablehttp.Client, baseURL, language string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &Client{rc: rc, baseURL: baseURL, language: language}
}

// URL returns the request URL for text.
func (c *Client) URL(text string) string {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", c.language)
	q.Set("client", "tw-ob")
	return c.baseURL + "?" + q.Encode()
}

// Fetch downloads the MP3 for text.
func (c *Client) Fetch(ctx context.Context, text string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.URL(text), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.rc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode >= 400 {
		return nil, HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	dat, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioSize))
	if err != nil {
		return nil, err
	}
	if len(dat) == 0 {
		return nil, ErrNoAudio
	}
	return dat, nil
}
