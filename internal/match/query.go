package match

import "github.com/hyperjump/shirabe/internal/normalize"

// Query is a matchable query. The variant set is closed: Literal,
// Fuzzy, Or, And. Queries are immutable once built.
type Query interface {
	isQuery()
}

// Literal seeks an exact substring of a report's normalized text.
type Literal struct {
	text string
}

// NewLiteral builds a literal query. The text is punctuation-normalized
// so its characters align with the report-side search space.
func NewLiteral(text string) *Literal {
	return &Literal{text: normalize.QueryText(text)}
}

// Text returns the normalized query text.
func (q *Literal) Text() string { return q.text }

func (*Literal) isQuery() {}

// Fuzzy seeks an approximate occurrence within an edit-distance
// threshold, evaluated under a pluggable measure.
type Fuzzy struct {
	text      string
	measure   Measure
	threshold int
}

// NewFuzzy builds a fuzzy query. The text is punctuation-normalized;
// negative thresholds are treated as zero.
func NewFuzzy(text string, m Measure, threshold int) *Fuzzy {
	if threshold < 0 {
		threshold = 0
	}
	return &Fuzzy{text: normalize.QueryText(text), measure: m, threshold: threshold}
}

// Text returns the normalized query text.
func (q *Fuzzy) Text() string { return q.text }

// Threshold returns the distance budget.
func (q *Fuzzy) Threshold() int { return q.threshold }

func (*Fuzzy) isQuery() {}

// Or matches when any subquery matches, trying them in declared order.
type Or struct {
	subqueries []Query
}

// NewOr builds a disjunction from at least two operands, flattening any
// nested Ors among them.
func NewOr(first, second Query, rest ...Query) *Or {
	q := CombineOr(first, second)
	for _, r := range rest {
		q = CombineOr(q, r)
	}
	return q
}

// Subqueries returns the subqueries in declared order.
func (q *Or) Subqueries() []Query {
	out := make([]Query, len(q.subqueries))
	copy(out, q.subqueries)
	return out
}

func (*Or) isQuery() {}

// And matches when every subquery matches the full report.
type And struct {
	subqueries []Query
}

// NewAnd builds a conjunction from at least two operands, flattening
// any nested Ands among them.
func NewAnd(first, second Query, rest ...Query) *And {
	q := CombineAnd(first, second)
	for _, r := range rest {
		q = CombineAnd(q, r)
	}
	return q
}

// Subqueries returns the subqueries in declared order.
func (q *And) Subqueries() []Query {
	out := make([]Query, len(q.subqueries))
	copy(out, q.subqueries)
	return out
}

func (*And) isQuery() {}

// CombineOr merges two queries into a disjunction. An Or operand's
// subquery list is spliced in rather than nested, so Or-of-Or stays
// flat; any other operand becomes a single entry. Flattening is purely
// representational: the flat list matches exactly like the equivalent
// nested tree.
func CombineOr(q1, q2 Query) *Or {
	subs := make([]Query, 0, 4)
	if o, ok := q1.(*Or); ok {
		subs = append(subs, o.subqueries...)
	} else {
		subs = append(subs, q1)
	}
	if o, ok := q2.(*Or); ok {
		subs = append(subs, o.subqueries...)
	} else {
		subs = append(subs, q2)
	}
	return &Or{subqueries: subs}
}

// CombineAnd merges two queries into a conjunction, splicing And
// operands the same way CombineOr splices Ors.
func CombineAnd(q1, q2 Query) *And {
	subs := make([]Query, 0, 4)
	if a, ok := q1.(*And); ok {
		subs = append(subs, a.subqueries...)
	} else {
		subs = append(subs, q1)
	}
	if a, ok := q2.(*And); ok {
		subs = append(subs, a.subqueries...)
	} else {
		subs = append(subs, q2)
	}
	return &And{subqueries: subs}
}
