package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は利用者が入力した自由記述欄からマークアップを除去する。
// ペットの観察記録やシェルターの紹介文など、プレーンテキストとして保存する項目に使用する。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はすべてのタグを除去するStrictPolicyでTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
// StrictPolicyがエスケープした実体参照は元の文字に戻す。
func (s *TextSanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// SanitizePtr はnil許容のフィールド向けのSanitize。空文字列になった場合はnilを返す。
func (s *TextSanitizer) SanitizePtr(text *string) *string {
	if text == nil {
		return nil
	}
	out := s.Sanitize(*text)
	if out == "" {
		return nil
	}
	return &out
}
