package classify

import (
	"strings"
	"unicode"
)

// Punctuation allowed to survive sanitization, covering both Latin and CJK
// marks since backend output may use either.
const allowedPunct = ".,!?;:'\"()-。，！？：；（）"

// Sanitize strips backend text down to letters, digits, whitespace and common
// punctuation so malformed control sequences never reach stored dialog.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case strings.ContainsRune(allowedPunct, r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
