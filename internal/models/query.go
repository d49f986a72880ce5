package models

import "fmt"

// Query kinds accepted in API payloads and CLI query JSON.
const (
	KindLiteral = "literal"
	KindFuzzy   = "fuzzy"
	KindOr      = "or"
	KindAnd     = "and"
)

// QuerySpec is the recursive wire form of a query. Literal and Fuzzy
// carry Text (and, for Fuzzy, Measure and Threshold); Or and And carry
// Subqueries.
type QuerySpec struct {
	Kind       string       `json:"kind"`
	Text       string       `json:"text,omitempty"`
	Measure    string       `json:"measure,omitempty"`
	Threshold  int          `json:"threshold,omitempty"`
	Subqueries []*QuerySpec `json:"subqueries,omitempty"`
}

// Validate checks the query structurally: known kind, non-negative
// threshold, and at least two subqueries per combinator. Empty query
// text is allowed (it simply never matches); unknown measure names are
// caught at compile time, not here.
func (q *QuerySpec) Validate() error {
	switch q.Kind {
	case KindLiteral:
		return nil
	case KindFuzzy:
		if q.Threshold < 0 {
			return fmt.Errorf("fuzzy threshold cannot be negative")
		}
		return nil
	case KindOr, KindAnd:
		if len(q.Subqueries) < 2 {
			return fmt.Errorf("%s query needs at least two subqueries", q.Kind)
		}
		for i, sub := range q.Subqueries {
			if sub == nil {
				return fmt.Errorf("%s subquery %d is null", q.Kind, i)
			}
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("%s subquery %d: %w", q.Kind, i, err)
			}
		}
		return nil
	case "":
		return fmt.Errorf("query kind is required")
	default:
		return fmt.Errorf("unknown query kind %q", q.Kind)
	}
}
