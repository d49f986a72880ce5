package match

// Candidate is a (distance, range) pair produced by the window scan.
type Candidate struct {
	Distance int
	Span     Span
}

// BestWindow slides a query-length window across target and returns the
// minimum thresholded distance together with the range of the first
// window achieving it. After each improvement the budget passed to
// subsequent evaluations tightens to the current best, so distances
// already known to exceed it are cut short. When no window is within
// maxDist the best observed value (maxDist+1) is still returned, with
// the first window's range; the caller detects failure as a result
// greater than maxDist.
//
// When query and target have equal length the whole target is the only
// candidate window. An empty query, or one longer than the target,
// yields the sentinel and an empty range.
func BestWindow(m Measure, query, target string, maxDist int) (int, Span) {
	queryRunes := []rune(query)
	targetRunes := []rune(target)
	l1 := len(queryRunes)
	l2 := len(targetRunes)

	if l1 == l2 {
		span := Span{}
		if l2 > 0 {
			span = Span{Start: 1, End: l2}
		}
		return Thresholded(m, query, target, maxDist), span
	}
	if l1 == 0 || l1 > l2 {
		return maxDist + 1, Span{}
	}

	best := -1
	budget := maxDist
	var bestSpan Span
	for start := 0; start+l1 <= l2; start++ {
		window := string(targetRunes[start : start+l1])
		d := Thresholded(m, query, window, budget)
		if best < 0 || d < best {
			best = d
			bestSpan = Span{Start: start + 1, End: start + l1}
			if d < budget {
				budget = d
			}
		}
	}
	return best, bestSpan
}

// AllWindows records every window whose thresholded distance is within
// maxDist, in left-to-right order. The budget never tightens here:
// every qualifying window must be retained, so pruning across windows
// would lose results.
func AllWindows(m Measure, query, target string, maxDist int) []Candidate {
	queryRunes := []rune(query)
	targetRunes := []rune(target)
	l1 := len(queryRunes)
	l2 := len(targetRunes)

	if l1 == l2 {
		if l2 == 0 {
			return nil
		}
		d := Thresholded(m, query, target, maxDist)
		if d > maxDist {
			return nil
		}
		return []Candidate{{Distance: d, Span: Span{Start: 1, End: l2}}}
	}
	if l1 == 0 || l1 > l2 {
		return nil
	}

	var out []Candidate
	for start := 0; start+l1 <= l2; start++ {
		window := string(targetRunes[start : start+l1])
		d := Thresholded(m, query, window, maxDist)
		if d <= maxDist {
			out = append(out, Candidate{Distance: d, Span: Span{Start: start + 1, End: start + l1}})
		}
	}
	return out
}
