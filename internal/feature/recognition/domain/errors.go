// Package domain defines the internal error kinds of the recognition feature.
// None of these texts reach the user directly; see usecase.Translate.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means neither a custom endpoint nor the default backend credential is available.
	ErrNotConfigured = errors.New("no recognition backend configured")

	// ErrEmptyResponse means the backend returned blank text.
	ErrEmptyResponse = errors.New("AI backend returned an empty response")

	// ErrMalformedJSON means the extracted reply text could not be parsed.
	ErrMalformedJSON = errors.New("AI reply is not parseable JSON")

	// ErrInvalidResponseShape means the completion envelope lacked the expected fields,
	// or the parsed reply was not an array.
	ErrInvalidResponseShape = errors.New("invalid response structure from custom API")

	// ErrInvalidShape means the final result failed validation (empty, or an element is malformed).
	ErrInvalidShape = errors.New("invalid JSON structure from AI response")
)

// HTTPError represents a non-2xx response from an outbound call.
type HTTPError struct {
	StatusCode int
	Status     string // status text, e.g. "Unauthorized"
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("custom API request failed: %d %s", e.StatusCode, e.Status)
}
