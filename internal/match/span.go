package match

// Span is a 1-indexed inclusive character (rune) interval into a target
// string. The zero value is the empty span.
type Span struct {
	Start int
	End   int
}

// Empty reports whether the span covers no characters.
func (s Span) Empty() bool {
	return s.Start == 0
}

// Len returns the number of characters covered.
func (s Span) Len() int {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start + 1
}

// Text returns the covered slice of target, or "" when the span is
// empty or falls outside it.
func (s Span) Text(target string) string {
	if s.Empty() {
		return ""
	}
	runes := []rune(target)
	if s.Start < 1 || s.Start > s.End || s.End > len(runes) {
		return ""
	}
	return string(runes[s.Start-1 : s.End])
}
