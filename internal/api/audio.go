package api

import "net/url"

// PronunciationPath は発音音声エンドポイントのパスです。
const PronunciationPath = "/v1/pronunciation"

// AudioURL はテキストの発音音声を取得するURLを返します。
func AudioURL(text string) string {
	return PronunciationPath + "?text=" + url.QueryEscape(text)
}
