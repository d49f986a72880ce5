package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/storage"
)

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addReport(t *testing.T, store storage.Storage, id, text string) *models.Report {
	t.Helper()
	report, err := models.NewReport(&models.ReportInput{ID: id, Text: text})
	if err != nil {
		t.Fatalf("NewReport(%q): %v", id, err)
	}
	if err := store.CreateReport(context.Background(), report); err != nil {
		t.Fatalf("CreateReport(%q): %v", id, err)
	}
	return report
}

func TestEngineMatchReport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addReport(t, store, "r1", "cat-dog runs")
	engine := NewEngine(store)

	resp, err := engine.MatchReport(ctx, "r1", &models.QuerySpec{Kind: models.KindLiteral, Text: "cat"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Matched {
		t.Fatal("expected a match")
	}
	if resp.Match == nil || resp.Match.Range == nil {
		t.Fatalf("match = %+v", resp.Match)
	}
	if resp.Match.Range.Start != 1 || resp.Match.Range.End != 3 {
		t.Errorf("range = %+v, want 1-3", resp.Match.Range)
	}
	if resp.Match.Text != "cat" {
		t.Errorf("text = %q, want %q", resp.Match.Text, "cat")
	}

	// No match is a normal response, not an error.
	resp, err = engine.MatchReport(ctx, "r1", &models.QuerySpec{Kind: models.KindLiteral, Text: "bird"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Matched || resp.Match != nil {
		t.Errorf("expected no match, got %+v", resp)
	}

	// Missing reports are storage errors.
	_, err = engine.MatchReport(ctx, "nope", &models.QuerySpec{Kind: models.KindLiteral, Text: "cat"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEngineMatchReportConjunction(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addReport(t, store, "r1", "cat-dog runs")
	engine := NewEngine(store)

	spec := &models.QuerySpec{
		Kind: models.KindAnd,
		Subqueries: []*models.QuerySpec{
			{Kind: models.KindLiteral, Text: "cat"},
			{Kind: models.KindLiteral, Text: "runs"},
		},
	}
	resp, err := engine.MatchReport(ctx, "r1", spec)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Matched {
		t.Fatal("expected a match")
	}
	if resp.Match.Range != nil {
		t.Errorf("conjunction match has range %+v, want none", resp.Match.Range)
	}
	if len(resp.Match.SubMatches) != 2 {
		t.Fatalf("sub-matches = %d, want 2", len(resp.Match.SubMatches))
	}
	if r := resp.Match.SubMatches[0].Range; r == nil || r.Start != 1 || r.End != 3 {
		t.Errorf("first sub-match range = %+v, want 1-3", r)
	}
	if r := resp.Match.SubMatches[1].Range; r == nil || r.Start != 9 || r.End != 12 {
		t.Errorf("second sub-match range = %+v, want 9-12", r)
	}
}

func TestEngineMatchAllReport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addReport(t, store, "r1", "aaa")
	engine := NewEngine(store)

	resp, err := engine.MatchAllReport(ctx, "r1", &models.QuerySpec{Kind: models.KindLiteral, Text: "aa"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(resp.Matches))
	}
	if resp.Matches[0].Range.Start != 1 || resp.Matches[1].Range.Start != 2 {
		t.Errorf("ranges = %+v, %+v", resp.Matches[0].Range, resp.Matches[1].Range)
	}

	// Conjunctions have no match-all form.
	and := &models.QuerySpec{
		Kind: models.KindAnd,
		Subqueries: []*models.QuerySpec{
			{Kind: models.KindLiteral, Text: "a"},
			{Kind: models.KindLiteral, Text: "aa"},
		},
	}
	if _, err := engine.MatchAllReport(ctx, "r1", and); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("match-all on a conjunction should wrap ErrInvalidQuery, got %v", err)
	}
}

func TestEngineScan(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addReport(t, store, "r1", "the cat sleeps")
	addReport(t, store, "r2", "a dog barks")
	addReport(t, store, "r3", "cat and dog")
	engine := NewEngine(store, WithWorkers(3))

	resp, err := engine.Scan(ctx, &models.QuerySpec{Kind: models.KindLiteral, Text: "cat"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalReports != 3 {
		t.Errorf("TotalReports = %d, want 3", resp.TotalReports)
	}
	if resp.TotalMatched != 2 || len(resp.Results) != 2 {
		t.Fatalf("TotalMatched = %d, results = %d, want 2", resp.TotalMatched, len(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Report.ID != "r1" && r.Report.ID != "r3" {
			t.Errorf("unexpected report %q in results", r.Report.ID)
		}
		if r.Match == nil || r.Matches != nil {
			t.Errorf("report %q: Match = %v, Matches = %v", r.Report.ID, r.Match, r.Matches)
		}
	}
}

// Results come back in store order no matter how the pool schedules
// the work.
func TestEngineScanPreservesStoreOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for i := 0; i < 20; i++ {
		addReport(t, store, fmt.Sprintf("r%02d", i), fmt.Sprintf("report %02d has a cat", i))
	}
	engine := NewEngine(store, WithWorkers(4))

	resp, err := engine.Scan(ctx, &models.QuerySpec{Kind: models.KindLiteral, Text: "cat"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 20 {
		t.Fatalf("results = %d, want 20", len(resp.Results))
	}
	stored, err := store.ListReports(ctx, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range resp.Results {
		if r.Report.ID != stored[i].ID {
			t.Fatalf("result %d is %q, store order has %q", i, r.Report.ID, stored[i].ID)
		}
	}
}

func TestEngineScanAllMode(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addReport(t, store, "r1", "aaa")
	addReport(t, store, "r2", "bbb")
	engine := NewEngine(store)

	resp, err := engine.Scan(ctx, &models.QuerySpec{Kind: models.KindLiteral, Text: "aa"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	r := resp.Results[0]
	if r.Match != nil {
		t.Errorf("all mode set Match = %+v", r.Match)
	}
	if len(r.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(r.Matches))
	}

	and := &models.QuerySpec{
		Kind: models.KindAnd,
		Subqueries: []*models.QuerySpec{
			{Kind: models.KindLiteral, Text: "a"},
			{Kind: models.KindLiteral, Text: "b"},
		},
	}
	if _, err := engine.Scan(ctx, and, true); err == nil {
		t.Error("expected an error for match-all scan with a conjunction")
	}
}

func TestEngineScanPagesThroughStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	total := pageSize + 20
	for i := 0; i < total; i++ {
		text := "filler entry"
		if i%50 == 0 {
			text = "needle entry"
		}
		addReport(t, store, fmt.Sprintf("r%04d", i), text)
	}
	engine := NewEngine(store, WithWorkers(8))

	resp, err := engine.Scan(ctx, &models.QuerySpec{Kind: models.KindLiteral, Text: "needle"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalReports != total {
		t.Errorf("TotalReports = %d, want %d", resp.TotalReports, total)
	}
	want := (total + 49) / 50
	if resp.TotalMatched != want {
		t.Errorf("TotalMatched = %d, want %d", resp.TotalMatched, want)
	}
}

func TestEngineScanInvalidQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	engine := NewEngine(store)

	_, err := engine.Scan(ctx, &models.QuerySpec{Kind: models.KindFuzzy, Text: "cat", Measure: "soundex"}, false)
	if err == nil {
		t.Error("expected a compile error for an unknown measure")
	}
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("compile failure should wrap ErrInvalidQuery, got %v", err)
	}
	if _, err := engine.MatchReport(ctx, "r1", nil); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("nil spec should wrap ErrInvalidQuery, got %v", err)
	}
}

func TestEngineScanCanceledContext(t *testing.T) {
	store := newTestStore(t)
	addReport(t, store, "r1", "cat")
	engine := NewEngine(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Scan(ctx, &models.QuerySpec{Kind: models.KindLiteral, Text: "cat"}, false); err == nil {
		t.Error("expected an error from a canceled context")
	}
}
