// Package utils provides small text and logging helpers.
package utils

// Truncate shortens s to at most limit runes and appends "..." when it cuts.
// Strings that already fit, and non-positive limits, are returned unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
