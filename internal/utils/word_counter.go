package utils

import (
	"strings"
)

// CountWords counts whitespace-separated non-empty tokens. Documents are
// plain text, so no markup stripping is attempted.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
