package usecase

import (
	"strings"

	"github.com/rivo/uniseg"

	"hanzi_backend/internal/feature/recognition/domain"
	"hanzi_backend/internal/feature/recognition/domain/entity"
)

// Normalize は互換APIの応答（JSONデコード済みの値）を1要素1文字の結果に正規化します。
// 配列でない場合は ErrInvalidResponseShape を返します。文字が不正な要素は読み飛ばしますが、
// 1文字の要素のピンインが文字列でも null でもない場合は ErrInvalidShape を返します。
func Normalize(v any) ([]entity.CharacterInfo, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, domain.ErrInvalidResponseShape
	}

	out := make([]entity.CharacterInfo, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		char, ok := obj["character"].(string)
		if !ok || char == "" {
			continue
		}

		graphemes := splitGraphemes(char)
		if len(graphemes) > 1 {
			// 単語が1要素にまとめられている場合は文字ごとに分割し、ピンインを位置で対応付ける
			var tokens []string
			if p, ok := obj["pinyin"].(string); ok {
				tokens = strings.Fields(p)
			}
			for i, g := range graphemes {
				pinyin := ""
				if i < len(tokens) {
					pinyin = tokens[i]
				}
				out = append(out, entity.CharacterInfo{Character: g, Pinyin: pinyin})
			}
			continue
		}

		var pinyin string
		switch p := obj["pinyin"].(type) {
		case nil:
		case string:
			pinyin = p
		default:
			return nil, domain.ErrInvalidShape
		}
		out = append(out, entity.CharacterInfo{Character: char, Pinyin: pinyin})
	}
	return out, nil
}

// Strict はスキーマ制約付きの応答を検証しつつ変換します。正規化は行いません。
func Strict(v any) ([]entity.CharacterInfo, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, domain.ErrInvalidShape
	}
	out := make([]entity.CharacterInfo, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, domain.ErrInvalidShape
		}
		char, ok1 := obj["character"].(string)
		pinyin, ok2 := obj["pinyin"].(string)
		if !ok1 || !ok2 {
			return nil, domain.ErrInvalidShape
		}
		out = append(out, entity.CharacterInfo{Character: char, Pinyin: pinyin})
	}
	return out, nil
}

// Validate は呼び出し元へ返す直前の結果を検証します。
// 成功時は「空でない、文字が空でない組の列」であることを保証します。
func Validate(result []entity.CharacterInfo) error {
	if len(result) == 0 {
		return domain.ErrInvalidShape
	}
	for _, c := range result {
		if c.Character == "" {
			return domain.ErrInvalidShape
		}
	}
	return nil
}

func splitGraphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
