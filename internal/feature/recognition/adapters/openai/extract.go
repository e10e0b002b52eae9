package openai

import (
	"regexp"
	"strings"
)

// Source は応答テキストのどの部分をJSONとして採用したかを表します。
type Source string

const (
	SourceFence Source = "fence" // ```json ... ``` ブロック
	SourceArray Source = "array" // 最初の '[' から最後の ']' まで
	SourceRaw   Source = "raw"   // テキスト全体
)

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	bareArray  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSON は応答テキストからJSON候補を取り出します。
// 「Markdownを使わない」指示は守られないことが多いため、フェンス → 配列 → 全体 の順で探します。
func ExtractJSON(content string) (string, Source) {
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), SourceFence
	}
	if m := bareArray.FindString(content); m != "" {
		return strings.TrimSpace(m), SourceArray
	}
	return strings.TrimSpace(content), SourceRaw
}
