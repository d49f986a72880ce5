package match

import (
	"fmt"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/textdist"
)

// Compile turns a wire query spec into an executable query. Measure
// names resolve through the textdist registry; an empty name means the
// default measure. Nested same-kind combinators flatten during
// construction, which does not change matching behavior.
func Compile(spec *models.QuerySpec) (Query, error) {
	if spec == nil {
		return nil, fmt.Errorf("query spec is nil")
	}
	switch spec.Kind {
	case models.KindLiteral:
		return NewLiteral(spec.Text), nil
	case models.KindFuzzy:
		if spec.Threshold < 0 {
			return nil, fmt.Errorf("fuzzy threshold cannot be negative")
		}
		f, ok := textdist.ByName(spec.Measure)
		if !ok {
			return nil, fmt.Errorf("unknown measure %q (accepted: %s)",
				spec.Measure, strings.Join(textdist.Names(), ", "))
		}
		return NewFuzzy(spec.Text, Measure(f), spec.Threshold), nil
	case models.KindOr, models.KindAnd:
		if len(spec.Subqueries) < 2 {
			return nil, fmt.Errorf("%s query needs at least two subqueries", spec.Kind)
		}
		subs := make([]Query, 0, len(spec.Subqueries))
		for i, s := range spec.Subqueries {
			sub, err := Compile(s)
			if err != nil {
				return nil, fmt.Errorf("%s subquery %d: %w", spec.Kind, i, err)
			}
			subs = append(subs, sub)
		}
		if spec.Kind == models.KindOr {
			return NewOr(subs[0], subs[1], subs[2:]...), nil
		}
		return NewAnd(subs[0], subs[1], subs[2:]...), nil
	default:
		return nil, fmt.Errorf("unknown query kind %q", spec.Kind)
	}
}
