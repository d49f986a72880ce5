// Package normalize canonicalizes report and query text for matching.
package normalize

import "strings"

// Rule is a single replacement-table entry: every occurrence of Pattern
// is replaced by Replacement. Patterns are literal substrings, not
// regular expressions.
type Rule struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// punctReplacer maps the fixed punctuation set to single spaces.
// The set is part of the matching contract and is not configurable.
var punctReplacer = strings.NewReplacer(
	".", " ",
	"!", " ",
	"?", " ",
	">", " ",
	"<", " ",
	`\`, " ",
	"-", " ",
)

// Text canonicalizes raw report text. The replacement rules are folded
// in order (each rule is applied to the previous rule's output), then
// punctuation is replaced by spaces, then exactly one trailing space is
// appended so the final word ends on a boundary character.
func Text(raw string, rules []Rule) string {
	out := raw
	for _, r := range rules {
		if r.Pattern == "" {
			continue
		}
		out = strings.ReplaceAll(out, r.Pattern, r.Replacement)
	}
	return punctReplacer.Replace(out) + " "
}

// QueryText canonicalizes query literal text: punctuation replacement
// only. The replacement table and the trailing space are report-side
// concerns; query text only needs to align with the
// punctuation-insensitive search space.
func QueryText(raw string) string {
	return punctReplacer.Replace(raw)
}
