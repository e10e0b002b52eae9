package domain

import "errors"

var (
	// ErrEmptyText は発音するテキストが空であることを表します。
	ErrEmptyText = errors.New("text is empty")
	// ErrTextTooLong は音声合成の上限を超えたことを表します。
	ErrTextTooLong = errors.New("text is too long")
)
