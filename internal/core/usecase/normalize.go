package usecase

import (
	"strings"
	"unicode"
)

// normalizeVulnKey produces the grouping/dedup key for vulnerability text:
// case-folded, punctuation stripped, whitespace collapsed. Idempotent.
func normalizeVulnKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// normalizeOptionKey is the option dedup key: case-folded trimmed equality.
func normalizeOptionKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
