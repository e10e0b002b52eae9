// Package entity はhistoryフィーチャーのドメインモデルを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"

	recognition "hanzi_backend/internal/feature/recognition/domain/entity"
)

// Item は成功した認識1回分の記録です。
type Item struct {
	ID           uuid.UUID                   `json:"id"`
	ImageDataURL string                      `json:"imageDataUrl"`
	Result       []recognition.CharacterInfo `json:"result"`
	CreatedAt    time.Time                   `json:"createdAt"`
}

// Word は結果の文字を連結した単語を返します。
func (i Item) Word() string {
	return recognition.Word(i.Result)
}
