package faqindex

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes text for duplicate comparison: lowercase, every
// non letter/digit rune becomes a space, runs of whitespace collapse to one,
// leading/trailing whitespace trimmed. Must be applied symmetrically to both
// sides of a comparison or the similarity score is meaningless.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		// punctuation and whitespace both collapse to a single space
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}
