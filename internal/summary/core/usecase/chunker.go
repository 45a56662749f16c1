package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"chat-stats-service/internal/summary/core/domain"
)

// BuildTranscript turns raw messages into transcript lines, dropping noise
// that would only pollute the prompt: bot commands, messages addressed to the
// bot itself, and messages carrying no letters at all (bare emoji, numbers,
// punctuation).
func BuildTranscript(messages []domain.ChatMessage, botHandle string) []string {
	handle := strings.ToLower(strings.TrimSpace(botHandle))
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		text := strings.TrimSpace(m.Text)
		if text == "" || strings.HasPrefix(text, "/") {
			continue
		}
		if handle != "" && strings.Contains(strings.ToLower(text), handle) {
			continue
		}
		if !hasLetter(text) {
			continue
		}
		lines = append(lines, m.Line())
	}
	return lines
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// SplitChunks groups transcript lines into chunks whose rendered size (lines
// joined by newlines) stays within maxBytes. A line is never split across
// chunks; a single line that alone exceeds the budget is hard-truncated.
func SplitChunks(lines []string, maxBytes int) [][]string {
	var chunks [][]string
	var current []string
	size := 0

	for _, line := range lines {
		if len(line) > maxBytes {
			line = truncateBytes(line, maxBytes)
		}
		cost := len(line)
		if len(current) > 0 {
			cost++ // joining newline
		}
		if len(current) > 0 && size+cost > maxBytes {
			chunks = append(chunks, current)
			current = nil
			size = 0
			cost = len(line)
		}
		current = append(current, line)
		size += cost
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// truncateBytes cuts s to at most maxBytes without splitting a rune.
func truncateBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8Start(b byte) bool {
	return b&0xc0 != 0x80
}

// truncateChars cuts s to at most maxChars characters.
func truncateChars(s string, maxChars int) string {
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
