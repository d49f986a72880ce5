package e2e

import (
	"fmt"

	"github.com/hyperjump/shirabe/internal/models"
)

// CorpusReport is one generated report. Its text embeds a signature
// phrase that occurs in no other report of the corpus.
type CorpusReport struct {
	ID   string
	Text string
}

// QueryCase pairs a query with the exact set of report IDs it matches
// across the corpus.
type QueryCase struct {
	Description string
	Spec        *models.QuerySpec
	ExpectedIDs []string
}

// Corpus is a deterministic set of reports plus query cases derived
// from their signature phrases.
type Corpus struct {
	Reports    []CorpusReport
	QueryCases []QueryCase
}

const corpusSize = 100

var (
	corpusSubjects = []string{
		"breaker", "conveyor", "turbine", "compressor", "boiler",
		"crane", "scrubber", "valve", "reactor", "furnace",
	}
	corpusConditions = []string{
		"overheating", "misaligned", "leaking", "corroded", "vibrating",
		"stalled", "flooded", "cracked", "grounded", "jammed",
	}
)

// BuildCorpus generates the corpus. Reports and query cases are
// deterministic, so tests can assert expected IDs exactly.
func BuildCorpus() *Corpus {
	reports := buildReports(corpusSize)
	return &Corpus{
		Reports:    reports,
		QueryCases: buildQueryCases(reports),
	}
}

func corpusSubject(i int) string   { return corpusSubjects[i%len(corpusSubjects)] }
func corpusCondition(i int) string { return corpusConditions[(i/10)%len(corpusConditions)] }

// signaturePhrase returns the phrase unique to report i. The words are
// lowercase and free of folded punctuation, so the phrase survives
// normalization byte for byte.
func signaturePhrase(i int) string {
	return fmt.Sprintf("%s was %s", corpusSubject(i), corpusCondition(i))
}

// injectTypo replaces the final rune of s, a single substitution.
func injectTypo(s string) string {
	runes := []rune(s)
	last := len(runes) - 1
	if runes[last] == 'x' {
		runes[last] = 'q'
	} else {
		runes[last] = 'x'
	}
	return string(runes)
}

// transposeTail swaps the last two runes of s, a single transposition.
func transposeTail(s string) string {
	runes := []rune(s)
	n := len(runes)
	runes[n-2], runes[n-1] = runes[n-1], runes[n-2]
	return string(runes)
}

func buildReports(n int) []CorpusReport {
	reports := make([]CorpusReport, 0, n)
	for i := 0; i < n; i++ {
		text := fmt.Sprintf(
			"Inspection report %d. Crew completed the walkthrough on schedule. The %s was %s during shift %d. No further deviations were recorded.",
			i+1, corpusSubject(i), corpusCondition(i), i+1,
		)
		reports = append(reports, CorpusReport{
			ID:   fmt.Sprintf("e2e-%03d", i+1),
			Text: text,
		})
	}
	return reports
}

func buildQueryCases(reports []CorpusReport) []QueryCase {
	var cases []QueryCase

	// Exact phrase lookups over a sample of reports.
	for i := 0; i < len(reports); i += 9 {
		phrase := signaturePhrase(i)
		cases = append(cases, QueryCase{
			Description: fmt.Sprintf("literal %q", phrase),
			Spec:        &models.QuerySpec{Kind: models.KindLiteral, Text: phrase},
			ExpectedIDs: []string{reports[i].ID},
		})
	}

	// One substituted character, within threshold 1 under any measure.
	for i := 4; i < len(reports); i += 13 {
		typo := injectTypo(signaturePhrase(i))
		cases = append(cases, QueryCase{
			Description: fmt.Sprintf("fuzzy %q", typo),
			Spec:        &models.QuerySpec{Kind: models.KindFuzzy, Text: typo, Threshold: 1},
			ExpectedIDs: []string{reports[i].ID},
		})
	}

	// A transposed tail stays within threshold 1 only under Damerau.
	for i := 7; i < len(reports); i += 29 {
		typo := transposeTail(signaturePhrase(i))
		cases = append(cases, QueryCase{
			Description: fmt.Sprintf("damerau %q", typo),
			Spec: &models.QuerySpec{
				Kind:      models.KindFuzzy,
				Text:      typo,
				Measure:   "damerau",
				Threshold: 1,
			},
			ExpectedIDs: []string{reports[i].ID},
		})
	}

	// Disjunctions across two distant reports.
	for i := 3; i+50 < len(reports); i += 31 {
		j := i + 50
		cases = append(cases, QueryCase{
			Description: fmt.Sprintf("or(%q, %q)", signaturePhrase(i), signaturePhrase(j)),
			Spec: &models.QuerySpec{
				Kind: models.KindOr,
				Subqueries: []*models.QuerySpec{
					{Kind: models.KindLiteral, Text: signaturePhrase(i)},
					{Kind: models.KindLiteral, Text: signaturePhrase(j)},
				},
			},
			ExpectedIDs: []string{reports[i].ID, reports[j].ID},
		})
	}

	// Conjunctions of a subject and a condition single out one report.
	for i := 17; i < len(reports); i += 23 {
		subject, condition := corpusSubject(i), corpusCondition(i)
		cases = append(cases, QueryCase{
			Description: fmt.Sprintf("and(%q, %q)", subject, condition),
			Spec: &models.QuerySpec{
				Kind: models.KindAnd,
				Subqueries: []*models.QuerySpec{
					{Kind: models.KindLiteral, Text: subject},
					{Kind: models.KindLiteral, Text: condition},
				},
			},
			ExpectedIDs: []string{reports[i].ID},
		})
	}

	return cases
}

// ToReportInputs converts the corpus for direct ingestion.
func (c *Corpus) ToReportInputs() []*models.ReportInput {
	inputs := make([]*models.ReportInput, 0, len(c.Reports))
	for _, r := range c.Reports {
		inputs = append(inputs, &models.ReportInput{ID: r.ID, Text: r.Text})
	}
	return inputs
}
