// Package entity はsettingsフィーチャーのドメインモデルを定義します。
package entity

import "strings"

// StorageKey は設定を保存するキーです。
const StorageKey = "ai_settings"

// Settings はAIバックエンドの利用設定です。ゼロ値がデフォルトです。
type Settings struct {
	UseCustomAPI bool   `json:"useCustomApi"`
	APIURL       string `json:"apiUrl"`
	APIKey       string `json:"apiKey"`
	Model        string `json:"model"`
}

// UsesCustomAPI は互換APIへルーティングすべきかを返します。
// useCustomApi が有効で、URL・キー・モデルがすべて空でない場合のみ true です。
func (s Settings) UsesCustomAPI() bool {
	return s.UseCustomAPI && s.APIURL != "" && s.APIKey != "" && s.Model != ""
}

// Endpoint はAPI URLの前後空白と末尾のスラッシュを取り除いたものを返します。
func (s Settings) Endpoint() string {
	return CleanURL(s.APIURL)
}

// MaskedKey は表示用にマスクしたAPIキーを返します。
func (s Settings) MaskedKey() string {
	return MaskKey(s.APIKey)
}

// CleanURL trims whitespace and a single trailing slash.
func CleanURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}

// MaskKey keeps the last four characters of a key.
func MaskKey(key string) string {
	r := []rune(key)
	switch {
	case len(r) == 0:
		return ""
	case len(r) <= 4:
		return strings.Repeat("*", len(r))
	default:
		return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
	}
}
