package http

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(status int, contentType, body string) *http.Response {
	u, _ := url.Parse("https://example.com/v1/models?key=secret")
	r := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{Method: http.MethodGet, URL: u},
	}
	r.Header.Set("Content-Type", contentType)
	return r
}

func TestLogResponse_PreservesBody(t *testing.T) {
	r := newResponse(http.StatusUnauthorized, "application/json; charset=utf-8", `{"error":"bad key"}`)

	LogResponse(nil, r)

	got, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"error":"bad key"}`, string(got))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/v1/models", redactURL("https://example.com/v1/models?key=secret"))
	assert.Equal(t, "https://example.com/v1", redactURL("https://example.com/v1"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}

func TestIsTextual(t *testing.T) {
	assert.True(t, isTextual("application/json"))
	assert.True(t, isTextual("text/plain; charset=utf-8"))
	assert.False(t, isTextual("audio/mpeg"))
}
