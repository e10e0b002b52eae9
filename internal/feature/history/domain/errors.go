package domain

import "errors"

// ErrNotFound は指定されたIDの履歴が存在しないことを表します。
var ErrNotFound = errors.New("history item not found")
