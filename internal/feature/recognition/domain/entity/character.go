// Package entity はrecognitionフィーチャーのドメインモデルを定義します。
package entity

import "strings"

// CharacterInfo は1文字とそのピンイン（声調記号付き）の組です。
type CharacterInfo struct {
	Character string `json:"character"` // 1書記素
	Pinyin    string `json:"pinyin"`    // 例: "guǒ"
}

// Word は認識結果の文字を読み順に連結した単語を返します。
func Word(result []CharacterInfo) string {
	var sb strings.Builder
	for _, c := range result {
		sb.WriteString(c.Character)
	}
	return sb.String()
}
