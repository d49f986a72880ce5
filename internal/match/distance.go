package match

// Measure is the pluggable edit-distance capability: it returns the
// exact distance between a and b when it is at most maxDist, and any
// value greater than maxDist otherwise. Implementations must be
// deterministic; beyond the budget the returned value need not be
// exact, only guaranteed to exceed maxDist.
type Measure func(a, b string, maxDist int) int

// Thresholded evaluates m under a hard budget: the true distance when
// it is at most maxDist, exactly maxDist+1 otherwise. Callers can then
// treat "no match within budget" uniformly as a result greater than
// maxDist. Pure function: no shared state, same inputs same output.
func Thresholded(m Measure, a, b string, maxDist int) int {
	if d := m(a, b, maxDist); d <= maxDist {
		return d
	}
	return maxDist + 1
}
