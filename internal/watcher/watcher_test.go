package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *recorder) hasSuffix(suffix string) bool {
	for _, p := range r.snapshot() {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

func TestWatcher_IngestOnWrite(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := mkdirAll(sub); err != nil {
		t.Fatal(err)
	}

	var ingested recorder
	w := NewWatcher([]string{dir}, []string{".txt"}, ingested.record, nil,
		WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(sub, "f.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(sub, "skip.xyz"), "nope"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)

	if !ingested.hasSuffix("f.txt") {
		t.Errorf("expected f.txt to be ingested, got %v", ingested.snapshot())
	}
	if ingested.hasSuffix("skip.xyz") {
		t.Errorf("skip.xyz should have been filtered out")
	}
}

func TestWatcher_RemoveAndRenameDropReports(t *testing.T) {
	dir := t.TempDir()

	removePath := filepath.Join(dir, "remove-me.txt")
	renamePath := filepath.Join(dir, "rename-me.txt")
	for _, p := range []string{removePath, renamePath} {
		if err := writeFile(p, "content"); err != nil {
			t.Fatal(err)
		}
	}

	var ingested, removed recorder
	w := NewWatcher([]string{dir}, []string{".txt"}, ingested.record, removed.record,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(removePath); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(renamePath, filepath.Join(dir, "renamed.txt")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)

	if !removed.hasSuffix("remove-me.txt") {
		t.Errorf("expected remove callback for remove-me.txt, got %v", removed.snapshot())
	}
	if !removed.hasSuffix("rename-me.txt") {
		t.Errorf("expected remove callback for rename-me.txt, got %v", removed.snapshot())
	}
	if !ingested.hasSuffix("renamed.txt") {
		t.Errorf("expected the rename target to be ingested, got %v", ingested.snapshot())
	}
}

func TestWatcher_Sync_ingestsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "a.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "ignore.xyz"), "x"); err != nil {
		t.Fatal(err)
	}

	var ingested recorder
	w := NewWatcher([]string{dir}, []string{".txt"}, ingested.record, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.Sync()

	got := ingested.snapshot()
	if len(got) != 1 || !strings.HasSuffix(got[0], "a.txt") {
		t.Errorf("expected one synced file a.txt, got %v", got)
	}
}

func TestWatcher_Start_createsMissingRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "watch", "me")

	w := NewWatcher([]string{root}, []string{".txt"}, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestWatcher_StartTwiceIsNoOp(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher([]string{dir}, nil, nil, nil)
	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Errorf("second Start should be a no-op, got %v", err)
	}
}

func TestWatcher_HandleNewDirectory_ingestsFilesInNewFolder(t *testing.T) {
	dir := t.TempDir()

	var ingested recorder
	w := NewWatcher([]string{dir}, []string{".txt", ".md"}, ingested.record, nil,
		WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Simulate copying a folder with files into the watched directory.
	newFolder := filepath.Join(dir, "new-folder")
	if err := mkdirAll(newFolder); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(newFolder, "doc1.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(newFolder, "doc2.md"), "world"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(newFolder, "ignore.xyz"), "skip"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(800 * time.Millisecond)

	if !ingested.hasSuffix("doc1.txt") || !ingested.hasSuffix("doc2.md") {
		t.Errorf("expected doc1.txt and doc2.md to be ingested, got %v", ingested.snapshot())
	}
	if ingested.hasSuffix("ignore.xyz") {
		t.Errorf("ignore.xyz should not be ingested")
	}
}

func TestWatcher_HandleNewDirectory_recursiveSubfolders(t *testing.T) {
	dir := t.TempDir()

	var ingested recorder
	w := NewWatcher([]string{dir}, []string{".txt"}, ingested.record, nil,
		WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	nested := filepath.Join(dir, "level1", "level2")
	if err := mkdirAll(nested); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "deep.txt"), "deep content"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(800 * time.Millisecond)

	if !ingested.hasSuffix("deep.txt") {
		t.Errorf("expected deep.txt to be ingested, got %v", ingested.snapshot())
	}
}

func TestScheduleIngest_debounceCollapsesBursts(t *testing.T) {
	var ingested recorder
	w := NewWatcher(nil, nil, ingested.record, nil, WithDebounce(50*time.Millisecond))

	for i := 0; i < 5; i++ {
		w.scheduleIngest("/tmp/burst.txt")
	}
	time.Sleep(300 * time.Millisecond)

	if got := len(ingested.snapshot()); got != 1 {
		t.Errorf("expected one ingest after burst, got %d", got)
	}
}

func TestCancelPending_dropsScheduledIngest(t *testing.T) {
	var ingested recorder
	w := NewWatcher(nil, nil, ingested.record, nil, WithDebounce(50*time.Millisecond))

	w.scheduleIngest("/tmp/doomed.txt")
	w.cancelPending("/tmp/doomed.txt")
	time.Sleep(300 * time.Millisecond)

	if got := len(ingested.snapshot()); got != 0 {
		t.Errorf("expected no ingest after cancel, got %d", got)
	}
}

func TestWithDebounce(t *testing.T) {
	w := NewWatcher(nil, nil, nil, nil, WithDebounce(time.Second))
	if w.debounce != time.Second {
		t.Errorf("debounce = %v, want %v", w.debounce, time.Second)
	}
	w = NewWatcher(nil, nil, nil, nil, WithDebounce(0))
	if w.debounce != defaultDebounce {
		t.Errorf("non-positive debounce should keep the default, got %v", w.debounce)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{".txt"}, true},
		{"/a/b.txt", []string{"txt"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
		{"/a/b", []string{".txt"}, false},
	}
	for _, tt := range tests {
		got := matchExtension(tt.path, tt.extensions)
		if got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/a/b/c.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		got := inDir(tt.dir, tt.path)
		if got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
