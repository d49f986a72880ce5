package match

// ResolveOverlaps consolidates candidates, already ordered by range
// start, into non-overlapping representatives: one per maximal run of
// transitively connected ranges. A candidate joins the current run when
// its range starts at or before the run's union end; the union then
// extends through the candidate's end, and the candidate replaces the
// run's representative only on strictly lower distance. Runs are
// transitive chains, so a bridging range can pull two non-overlapping
// ranges into one run, and the kept representative need not overlap
// every member. Input of length <= 1 is returned unchanged.
func ResolveOverlaps(cands []Candidate) []Candidate {
	if len(cands) <= 1 {
		return cands
	}

	out := make([]Candidate, 0, len(cands))
	best := cands[0]
	runEnd := cands[0].Span.End
	for _, c := range cands[1:] {
		if c.Span.Start <= runEnd {
			if c.Span.End > runEnd {
				runEnd = c.Span.End
			}
			if c.Distance < best.Distance {
				best = c
			}
			continue
		}
		out = append(out, best)
		best = c
		runEnd = c.Span.End
	}
	return append(out, best)
}
