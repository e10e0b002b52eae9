// Package entity はpronunciationフィーチャーのドメインモデルを定義します。
package entity

// Reading は1文字の辞書上の読み（声調記号付き）です。先頭が代表的な読みです。
type Reading struct {
	Character string
	Pinyin    []string
}
