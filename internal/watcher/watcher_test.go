package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) onChange(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "anime.json")
	if err := writeFile(catalog, "[]"); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w, err := NewWatcher([]string{catalog}, rec.onChange, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := writeFile(catalog, `[{"id":"1"}]`); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(400 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected one settled change, got %v", got)
	}
	if got[0] != filepath.Clean(catalog) {
		t.Errorf("changed path = %s, want %s", got[0], catalog)
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "manga.yaml")
	if err := writeFile(catalog, "[]"); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w, err := NewWatcher([]string{catalog}, rec.onChange, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "notes.txt"), "unrelated"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("sibling file should not trigger a change, got %v", got)
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "quiz.json")
	if err := writeFile(catalog, "[]"); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w, err := NewWatcher([]string{catalog}, rec.onChange, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tmp := filepath.Join(dir, ".quiz.json.tmp")
	if err := writeFile(tmp, `[{"id":"q1"}]`); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, catalog); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := rec.snapshot(); len(got) == 0 {
		t.Error("expected a change after the file was replaced")
	}
}

func TestWatcher_AddRemove(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")

	w, err := NewWatcher([]string{a}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(b); err != nil {
		t.Fatal(err)
	}
	if got := w.Files(); len(got) != 2 {
		t.Errorf("Files() = %v, want 2 entries", got)
	}
	if w.dirRefs[filepath.Clean(dir)] != 2 {
		t.Errorf("dir refs = %d, want 2", w.dirRefs[filepath.Clean(dir)])
	}

	if err := w.Remove(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Remove(b); err != nil {
		t.Fatal(err)
	}
	if got := w.Files(); len(got) != 0 {
		t.Errorf("after remove: %v", got)
	}
	if _, ok := w.dirRefs[filepath.Clean(dir)]; ok {
		t.Error("directory should be unwatched once no file in it is watched")
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing", "anime.json")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected an error for a missing directory")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "anime.json")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Stop()
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcher_StopRightAfterStart(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		w, err := NewWatcher([]string{filepath.Join(dir, "anime.json")}, nil)
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		if err := w.Start(ctx); err != nil {
			t.Fatal(err)
		}
		if i%2 == 0 {
			w.Stop()
		} else {
			cancel()
		}
		cancel()
	}
	// Let runs that saw a cancelled context finish.
	time.Sleep(50 * time.Millisecond)
}

func TestWatcher_RestartDeliversEvents(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "quiz.json")
	if err := writeFile(catalog, "[]"); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w, err := NewWatcher([]string{catalog}, rec.onChange, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(catalog, `[{"id":"q1"}]`); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("expected one change after restart, got %v", got)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
