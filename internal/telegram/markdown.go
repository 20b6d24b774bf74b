package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage splits a message into chunks of maxLen characters,
// trying to split at newlines when possible.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if utf8.RuneCountInString(text) <= maxLen {
			parts = append(parts, text)
			break
		}

		runes := []rune(text)
		splitAt := maxLen

		// Prefer a newline in the second half of the chunk
		chunk := string(runes[:maxLen])
		if nl := strings.LastIndex(chunk, "\n"); nl >= 0 {
			if at := utf8.RuneCountInString(chunk[:nl]) + 1; at > maxLen/2 {
				splitAt = at
			}
		}

		parts = append(parts, string(runes[:splitAt]))
		text = string(runes[splitAt:])
	}

	return parts
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown makes user supplied text safe inside legacy Markdown.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FixMarkdown closes an unbalanced bold marker or inline code span, which
// Telegram would otherwise reject.
func FixMarkdown(text string) string {
	var (
		b          strings.Builder
		inCode     bool
		boldOpen   bool
		escapeNext bool
	)
	for _, r := range text {
		b.WriteRune(r)
		if escapeNext {
			escapeNext = false
			continue
		}
		switch {
		case r == '\\' && !inCode:
			escapeNext = true
		case r == '`':
			inCode = !inCode
		case r == '*' && !inCode:
			boldOpen = !boldOpen
		}
	}
	if inCode {
		b.WriteRune('`')
	}
	if boldOpen {
		b.WriteRune('*')
	}
	return b.String()
}
