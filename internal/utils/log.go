package utils

import "strings"

const ellipsis = "..."

// TruncateForLog collapses whitespace runs into single spaces and keeps at
// most limit runes, marking cut text with an ellipsis. Résumés and prompts
// are multi-line, so the collapsed form keeps console logs on one line.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + ellipsis
}
