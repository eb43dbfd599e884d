package utils

import (
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]+)?\\s*(.*?)```")

// StripFences unwraps Markdown code-fence blocks the backend sometimes wraps
// structured output in. Text without fences passes through trimmed.
func StripFences(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// Truncate cuts text to at most max runes, marking the cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
