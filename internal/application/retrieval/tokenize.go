package retrieval

import (
	"strings"
	"unicode"
)

// Tokenize 小写化后按字母数字连续段切词。
// CJK 统一表意文字逐字成词，避免整句粘连成单个 token。
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	tokens := make([]string, 0, 16)
	var run []rune
	flush := func() {
		if len(run) > 0 {
			tokens = append(tokens, string(run))
			run = run[:0]
		}
	}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			run = append(run, r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
