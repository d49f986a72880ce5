package textdist

// DamerauLevenshtein calculates the Damerau-Levenshtein distance, which
// also counts a transposition of two adjacent characters as a single
// edit operation.
func DamerauLevenshtein(a, b string) int {
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

	// The transposition check reaches two rows back, so the full matrix
	// is kept.
	d := make([][]int, lenA+1)
	for i := range d {
		d[i] = make([]int, lenB+1)
	}
	for i := 0; i <= lenA; i++ {
		d[i][0] = i
	}
	for j := 0; j <= lenB; j++ {
		d[0][j] = j
	}

	for i := 1; i <= lenA; i++ {
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			d[i][j] = min(
				d[i-1][j]+1,      // deletion
				d[i][j-1]+1,      // insertion
				d[i-1][j-1]+cost, // substitution
			)
			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				d[i][j] = minTwo(d[i][j], d[i-2][j-2]+cost)
			}
		}
	}

	return d[lenA][lenB]
}

// BoundedDamerauLevenshtein is DamerauLevenshtein with a distance
// budget: the exact distance when it is at most maxDist, maxDist+1 as
// soon as the distance is known to exceed it.
func BoundedDamerauLevenshtein(a, b string, maxDist int) int {
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

	if diff := abs(lenA - lenB); diff > maxDist {
		return maxDist + 1
	}
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	d := make([][]int, lenA+1)
	for i := range d {
		d[i] = make([]int, lenB+1)
	}
	for i := 0; i <= lenA; i++ {
		d[i][0] = i
	}
	for j := 0; j <= lenB; j++ {
		d[0][j] = j
	}

	for i := 1; i <= lenA; i++ {
		rowMin := d[i][0]
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			d[i][j] = min(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				d[i][j] = minTwo(d[i][j], d[i-2][j-2]+cost)
			}
			if d[i][j] < rowMin {
				rowMin = d[i][j]
			}
		}
		if rowMin > maxDist {
			return maxDist + 1
		}
	}

	if d[lenA][lenB] > maxDist {
		return maxDist + 1
	}
	return d[lenA][lenB]
}
