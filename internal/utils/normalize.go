package utils

import "strings"

// NormalizeWord trims surrounding whitespace and lowercases.
// This is the lookup key form used by every table.
func NormalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
