package usecase

import (
	"errors"
	"strings"
)

// Kind はユーザーに提示するエラー分類です。
type Kind string

const (
	KindQuota      Kind = "quota"
	KindInvalidKey Kind = "invalid_key"
	KindNetwork    Kind = "network"
	KindFormat     Kind = "format"
	KindGeneric    Kind = "generic"
)

// ユーザー向けメッセージ
const (
	MsgQuota      = "API 调用超出配额，请检查您的账户用量或稍后再试。"
	MsgInvalidKey = "API Key 无效或不正确，请在设置中检查并更正。"
	MsgNetwork    = "网络请求失败，请检查您的网络连接和API地址。"
	MsgFormat     = "AI模型返回了无效的数据格式，请稍后重试。"
	MsgGeneric    = "识别出错，请检查设置并重试。"
)

// RecognitionError は認識失敗を1つのユーザー向けメッセージに変換したものです。
// 内部エラーは Err に保持され、Error() には現れません。
type RecognitionError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *RecognitionError) Error() string { return e.Message }

func (e *RecognitionError) Unwrap() error { return e.Err }

// Classify は内部エラーの文言（小文字化）に対する部分一致で分類します。
// 判定順: quota → APIキー → fetch/network → invalid json structure → その他。
func Classify(msg string) Kind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "quota"):
		return KindQuota
	case strings.Contains(lower, "api key not valid"), strings.Contains(lower, "invalid api key"):
		return KindInvalidKey
	case strings.Contains(lower, "fetch"), strings.Contains(lower, "network"):
		return KindNetwork
	case strings.Contains(lower, "invalid json structure"):
		return KindFormat
	default:
		return KindGeneric
	}
}

// Message は分類に対応するユーザー向けメッセージを返します。
func (k Kind) Message() string {
	switch k {
	case KindQuota:
		return MsgQuota
	case KindInvalidKey:
		return MsgInvalidKey
	case KindNetwork:
		return MsgNetwork
	case KindFormat:
		return MsgFormat
	default:
		return MsgGeneric
	}
}

// Translate は内部エラーを RecognitionError に変換します。既に変換済みならそのまま返します。
func Translate(err error) *RecognitionError {
	if err == nil {
		return nil
	}
	var re *RecognitionError
	if errors.As(err, &re) {
		return re
	}
	kind := Classify(err.Error())
	return &RecognitionError{Kind: kind, Message: kind.Message(), Err: err}
}
