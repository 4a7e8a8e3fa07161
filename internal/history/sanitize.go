package history

import (
	"strings"
	"unicode/utf8"
)

// Sanitize drops invalid UTF-8 byte sequences (no replacement marker) and
// truncates to at most maxChars runes. Rune-wise truncation can never leave
// a partial multi-byte sequence behind.
func Sanitize(s string, maxChars int) string {
	s = strings.ToValidUTF8(s, "")
	if maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
