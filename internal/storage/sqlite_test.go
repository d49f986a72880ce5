package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shirabe/internal/models"
)

func TestSQLiteStorage_CRUD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	report := &models.Report{
		ID:       "r1",
		Text:     "cat dog runs ",
		Metadata: map[string]interface{}{"source": "unit"},
	}
	if err := store.CreateReport(ctx, report); err != nil {
		t.Fatal(err)
	}
	if report.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "cat dog runs " {
		t.Errorf("got %+v", got)
	}
	if got.Metadata["source"] != "unit" {
		t.Errorf("metadata = %v", got.Metadata)
	}

	report.Text = "dog naps "
	if err := store.UpdateReport(ctx, report); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetReport(ctx, "r1")
	if got.Text != "dog naps " {
		t.Errorf("expected updated text, got %q", got.Text)
	}

	list, err := store.ListReports(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 report, got %d", len(list))
	}

	if err := store.DeleteReport(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	_, err = store.GetReport(ctx, "r1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, err := store.GetReport(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport: expected ErrNotFound, got %v", err)
	}
	err = store.UpdateReport(ctx, &models.Report{ID: "nope", Text: "t"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateReport: expected ErrNotFound, got %v", err)
	}
	// Deleting a missing report is not an error.
	if err := store.DeleteReport(ctx, "nope"); err != nil {
		t.Errorf("DeleteReport: %v", err)
	}
}

func TestSQLiteStorage_ListPagination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		if err := store.CreateReport(ctx, &models.Report{ID: id, Text: id + " "}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := store.ListReports(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Errorf("first page: expected 2 reports, got %d", len(page))
	}
	rest, err := store.ListReports(ctx, 4, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 {
		t.Errorf("last page: expected 1 report, got %d", len(rest))
	}
}

func TestSQLiteStorage_Counts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	n, err := store.CountReports(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountReports: %v, %d", err, n)
	}
	_ = store.CreateReport(ctx, &models.Report{ID: "x", Text: "c "})
	n, _ = store.CountReports(ctx)
	if n != 1 {
		t.Errorf("expected 1 report, got %d", n)
	}
}

func TestSQLiteStorage_MetadataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	report := &models.Report{
		ID:   "m1",
		Text: "text ",
		Metadata: map[string]interface{}{
			"path":  "/tmp/report.txt",
			"size":  float64(42),
			"inner": map[string]interface{}{"k": "v"},
		},
	}
	if err := store.CreateReport(ctx, report); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetReport(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata["path"] != "/tmp/report.txt" {
		t.Errorf("path = %v", got.Metadata["path"])
	}
	if got.Metadata["size"] != float64(42) {
		t.Errorf("size = %v", got.Metadata["size"])
	}
	inner, ok := got.Metadata["inner"].(map[string]interface{})
	if !ok || inner["k"] != "v" {
		t.Errorf("inner = %v", got.Metadata["inner"])
	}
}
