// Package textdist provides edit-distance measures for fuzzy matching.
//
// The bounded variants implement the distance capability consumed by the
// matcher: they return the exact distance when it is at most maxDist and
// a value greater than maxDist otherwise, allowing the dynamic program
// to bail out as soon as the budget is provably blown.
package textdist

// Levenshtein calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one
// string into another. Rune-based, so multi-byte characters count as
// single edits.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len([]rune(b))
	}
	if len(b) == 0 {
		return len([]rune(a))
	}

	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)

	// Two rows are enough: each cell only looks at the previous row.
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[lenB]
}

// BoundedLevenshtein is Levenshtein with a distance budget. It returns
// the exact distance when it is at most maxDist, and maxDist+1 as soon
// as the distance is known to exceed the budget. Deterministic and free
// of shared state, so it is safe for concurrent use.
func BoundedLevenshtein(a, b string, maxDist int) int {
	if a == b {
		return 0
	}
	if maxDist < 0 {
		return maxDist + 1
	}

	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)

	// The length gap is a lower bound on the distance.
	if diff := abs(lenA - lenB); diff > maxDist {
		return maxDist + 1
	}
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		// Every later cell derives from this row, so once the whole
		// row exceeds the budget no path can come back under it.
		if rowMin > maxDist {
			return maxDist + 1
		}
		prev, curr = curr, prev
	}

	if prev[lenB] > maxDist {
		return maxDist + 1
	}
	return prev[lenB]
}

// min returns the minimum of three integers.
func min(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

// minTwo returns the minimum of two integers.
func minTwo(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
