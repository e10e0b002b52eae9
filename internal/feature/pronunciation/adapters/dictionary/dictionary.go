// Package dictionary は go-pinyin の辞書で漢字に読みを付けます。
package dictionary

import (
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"

	"hanzi_backend/internal/feature/pronunciation/domain/entity"
	recognition "hanzi_backend/internal/feature/recognition/domain/entity"
)

// Dictionary は漢字の読みを引きます。漢字以外の文字は無視します。
type Dictionary struct {
	primary gopinyin.Args
	all     gopinyin.Args
}

// New creates a Dictionary.
func New() *Dictionary {
	primary := gopinyin.NewArgs()
	primary.Style = gopinyin.Tone // 例: zhōng

	all := gopinyin.NewArgs()
	all.Style = gopinyin.Tone
	all.Heteronym = true

	return &Dictionary{primary: primary, all: all}
}

// Annotate は text 中の漢字を順に取り出し、代表的な読みを付けます。
func (d *Dictionary) Annotate(text string) []recognition.CharacterInfo {
	var out []recognition.CharacterInfo
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			continue
		}
		pinyin := ""
		if p := lookup(r, d.primary); len(p) > 0 {
			pinyin = p[0]
		}
		out = append(out, recognition.CharacterInfo{Character: string(r), Pinyin: pinyin})
	}
	return out
}

// Readings は text 中の漢字ごとに、辞書にあるすべての読みを返します。
func (d *Dictionary) Readings(text string) []entity.Reading {
	var out []entity.Reading
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			continue
		}
		out = append(out, entity.Reading{Character: string(r), Pinyin: lookup(r, d.all)})
	}
	return out
}

func lookup(r rune, args gopinyin.Args) []string {
	result := gopinyin.Pinyin(string(r), args)
	if len(result) == 0 {
		return nil
	}
	return result[0]
}
