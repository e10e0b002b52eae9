package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// maxLoggedBody caps how much of a response body ends up in the log.
const maxLoggedBody = 2048

// LogResponse is a retryablehttp response hook.
// It logs HTTP errors with WARN and, when DEBUG is enabled, every response with its body.
// Binary bodies are never logged.
func LogResponse(_ retryablehttp.Logger, r *http.Response) {
	isDebug := slog.Default().Enabled(context.Background(), slog.LevelDebug)
	isHTTPError := r.StatusCode >= 400
	if !isDebug && !isHTTPError {
		return
	}

	level := slog.LevelDebug
	if isHTTPError {
		level = slog.LevelWarn
	}
	args := []any{
		"method", r.Request.Method,
		"url", redactURL(r.Request.URL.String()),
		"status", r.StatusCode,
	}
	if isTextual(r.Header.Get("Content-Type")) {
		body, err := copyResponseBody(r)
		if err != nil {
			slog.Error("Failed to extract response body", "error", err)
		} else {
			args = append(args, "body", truncate(string(body), maxLoggedBody))
		}
	}
	slog.Log(context.Background(), level, "HTTP response", args...)
}

// copyResponseBody returns a copy of the response body and restores it on r.
func copyResponseBody(r *http.Response) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	return body, nil
}

func isTextual(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") || strings.Contains(ct, "json")
}

// redactURL drops the query string, which may carry spoken text or keys.
func redactURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
