package textdist

import "sort"

// Func is a bounded distance measure: it returns the exact distance
// between a and b when it is at most maxDist, and some value greater
// than maxDist otherwise. Implementations must be deterministic.
type Func func(a, b string, maxDist int) int

// Measure names accepted in configs and API payloads.
const (
	NameLevenshtein = "levenshtein"
	NameDamerau     = "damerau"
)

var measures = map[string]Func{
	NameLevenshtein:       BoundedLevenshtein,
	NameDamerau:           BoundedDamerauLevenshtein,
	"damerau-levenshtein": BoundedDamerauLevenshtein,
}

// ByName resolves a measure name. The empty name resolves to
// Levenshtein, the default measure.
func ByName(name string) (Func, bool) {
	if name == "" {
		name = NameLevenshtein
	}
	f, ok := measures[name]
	return f, ok
}

// Names returns the accepted measure names, sorted.
func Names() []string {
	out := make([]string, 0, len(measures))
	for name := range measures {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
