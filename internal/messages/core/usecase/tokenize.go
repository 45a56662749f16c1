package usecase

import (
	"strings"
	"unicode"
)

const minWordLen = 3

// TokenizeWords extracts lowercase word tokens for the per-word counters.
// Tokens shorter than three letters are noise and skipped; max caps the
// number of tokens taken from one message.
func TokenizeWords(text string, max int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minWordLen {
			continue
		}
		words = append(words, f)
		if len(words) == max {
			break
		}
	}
	return words
}
