// Package match implements windowed approximate text matching: literal
// and fuzzy queries with Or/And combinators, evaluated against a
// report's normalized text. Fuzzy evaluation slides a query-length
// window across the target under a thresholded distance measure with
// branch-and-bound pruning, and consolidates overlapping candidates
// into best-distance representatives.
//
// Everything here is synchronous and free of shared mutable state;
// queries and reports are immutable, so concurrent evaluations against
// the same values need no locking.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/shirabe/internal/models"
)

// Result is a successful match outcome: either a *QueryMatch or a
// *ConjunctionMatch.
type Result interface {
	isResult()
}

// QueryMatch describes one occurrence of a query within a report.
// It borrows the query and report it references; it must not outlive
// them.
type QueryMatch struct {
	Query    Query
	Report   *models.Report
	Distance int
	Span     Span
}

func (*QueryMatch) isResult() {}

// Text returns the matched slice of the report's normalized text.
func (m *QueryMatch) Text() string {
	return m.Span.Text(m.Report.Text)
}

// ConjunctionMatch holds one sub-match per And subquery, in subquery
// order.
type ConjunctionMatch struct {
	SubMatches []Result
}

func (*ConjunctionMatch) isResult() {}

// Match returns the first match of q in report, or nil when there is
// none. No-match is an ordinary value, never an error.
//
// Literal returns the leftmost exact occurrence at distance 0. Fuzzy
// returns the best window within its threshold. Or tries subqueries in
// declared order and short-circuits on the first hit without looking
// for a better one. And requires every subquery to match the full
// report independently, fails fast on the first miss, and reports a
// ConjunctionMatch of first matches in subquery order.
func Match(q Query, report *models.Report) Result {
	switch qq := q.(type) {
	case *Literal:
		if m := matchLiteral(qq, report); m != nil {
			return m
		}
		return nil
	case *Fuzzy:
		if m := matchFuzzy(qq, report); m != nil {
			return m
		}
		return nil
	case *Or:
		for _, sub := range qq.subqueries {
			if m := Match(sub, report); m != nil {
				return m
			}
		}
		return nil
	case *And:
		subs := make([]Result, 0, len(qq.subqueries))
		for _, sub := range qq.subqueries {
			m := Match(sub, report)
			if m == nil {
				return nil
			}
			subs = append(subs, m)
		}
		return &ConjunctionMatch{SubMatches: subs}
	}
	return nil
}

// MatchAll returns every match of q in report, in the variant's order:
// every exact occurrence for Literal (overlaps allowed, no resolution),
// overlap-resolved window hits for Fuzzy, and the concatenation of
// subquery results in declared order for Or (no dedup, no cross-subquery
// resolution). And has no exhaustive-match semantics and yields nil.
// MatchAll never fails; an empty result means no matches.
func MatchAll(q Query, report *models.Report) []*QueryMatch {
	switch qq := q.(type) {
	case *Literal:
		return matchAllLiteral(qq, report)
	case *Fuzzy:
		return matchAllFuzzy(qq, report)
	case *Or:
		var out []*QueryMatch
		for _, sub := range qq.subqueries {
			out = append(out, MatchAll(sub, report)...)
		}
		return out
	case *And:
		return nil
	}
	return nil
}

func matchLiteral(q *Literal, r *models.Report) *QueryMatch {
	target := r.Text
	if q.text == "" || utf8.RuneCountInString(q.text) > utf8.RuneCountInString(target) {
		return nil
	}
	idx := strings.Index(target, q.text)
	if idx < 0 {
		return nil
	}
	start := utf8.RuneCountInString(target[:idx]) + 1
	return &QueryMatch{
		Query:    q,
		Report:   r,
		Distance: 0,
		Span:     Span{Start: start, End: start + utf8.RuneCountInString(q.text) - 1},
	}
}

func matchAllLiteral(q *Literal, r *models.Report) []*QueryMatch {
	target := r.Text
	qlen := utf8.RuneCountInString(q.text)
	if q.text == "" || qlen > utf8.RuneCountInString(target) {
		return nil
	}

	var out []*QueryMatch
	from := 0    // byte offset of the remaining search space
	runeIdx := 0 // rune offset of from
	for {
		idx := strings.Index(target[from:], q.text)
		if idx < 0 {
			break
		}
		runeIdx += utf8.RuneCountInString(target[from : from+idx])
		start := runeIdx + 1
		out = append(out, &QueryMatch{
			Query:    q,
			Report:   r,
			Distance: 0,
			Span:     Span{Start: start, End: start + qlen - 1},
		})
		// Advance a single rune past the occurrence start so
		// overlapping occurrences are still found.
		_, size := utf8.DecodeRuneInString(target[from+idx:])
		from += idx + size
		runeIdx++
	}
	return out
}

func matchFuzzy(q *Fuzzy, r *models.Report) *QueryMatch {
	target := r.Text
	if q.text == "" || utf8.RuneCountInString(q.text) > utf8.RuneCountInString(target) {
		return nil
	}
	d, span := BestWindow(q.measure, q.text, target, q.threshold)
	if d > q.threshold {
		return nil
	}
	return &QueryMatch{Query: q, Report: r, Distance: d, Span: span}
}

func matchAllFuzzy(q *Fuzzy, r *models.Report) []*QueryMatch {
	target := r.Text
	if q.text == "" || utf8.RuneCountInString(q.text) > utf8.RuneCountInString(target) {
		return nil
	}
	cands := ResolveOverlaps(AllWindows(q.measure, q.text, target, q.threshold))
	if len(cands) == 0 {
		return nil
	}
	out := make([]*QueryMatch, 0, len(cands))
	for _, c := range cands {
		out = append(out, &QueryMatch{Query: q, Report: r, Distance: c.Distance, Span: c.Span})
	}
	return out
}
