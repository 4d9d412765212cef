package walker

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/fstree/crawld/internal/exclude"
	"github.com/fstree/crawld/internal/model"
)

// fakeReader serves a fixed in-memory tree instead of touching the real
// filesystem, the same substitution the teacher's tests make for its own
// scan stage via a directory fixture.
type fakeReader struct {
	tree map[string]fakeDir
}

type fakeDir struct {
	dirs  []string
	files []string
}

func (f *fakeReader) Listdir(path string) (string, []string, []model.FileEntry, error) {
	d, ok := f.tree[path]
	if !ok {
		return path, nil, nil, fmt.Errorf("no such fake directory: %s", path)
	}
	var files []model.FileEntry
	for _, name := range d.files {
		files = append(files, model.FileEntry{Name: name, Size: 1})
	}
	return path, d.dirs, files, nil
}

func noopFilter() *exclude.Filter {
	return exclude.New(nil, nil, nil, nil)
}

func collect(t *testing.T, ch <-chan model.PathEnvelope, timeout time.Duration) []model.PathEnvelope {
	t.Helper()
	var out []model.PathEnvelope
	deadline := time.After(timeout)
	for {
		select {
		case env, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, env)
		case <-deadline:
			t.Fatalf("timed out waiting for walk to finish, got %d envelopes", len(out))
		}
	}
}

func TestWalkVisitsEveryDirectory(t *testing.T) {
	reader := &fakeReader{tree: map[string]fakeDir{
		"/root":     {dirs: []string{"/root/a", "/root/b"}, files: []string{"f1"}},
		"/root/a":   {dirs: nil, files: []string{"f2", "f3"}},
		"/root/b":   {dirs: []string{"/root/b/c"}, files: nil},
		"/root/b/c": {dirs: nil, files: []string{"f4"}},
	}}

	w := New(Options{Reader: reader, Filter: noopFilter(), NumWorkers: 4, QuiesceDelay: 10 * time.Millisecond, PollInterval: 5 * time.Millisecond})
	ch := w.Walk(context.Background(), "/root")
	envs := collect(t, ch, 2*time.Second)

	var roots []string
	totalFiles := 0
	for _, e := range envs {
		roots = append(roots, e.Root)
		totalFiles += len(e.Files)
	}
	sort.Strings(roots)

	want := []string{"/root", "/root/a", "/root/b", "/root/b/c"}
	if len(roots) != len(want) {
		t.Fatalf("got roots %v, want %v", roots, want)
	}
	for i, r := range want {
		if roots[i] != r {
			t.Errorf("roots[%d] = %q, want %q", i, roots[i], r)
		}
	}
	if totalFiles != 4 {
		t.Errorf("totalFiles = %d, want 4", totalFiles)
	}
	if err := w.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestWalkRespectsMaxDepth(t *testing.T) {
	reader := &fakeReader{tree: map[string]fakeDir{
		"/root":   {dirs: []string{"/root/a"}},
		"/root/a": {dirs: []string{"/root/a/b"}},
		// /root/a/b is never listed: MaxDepth stops recursion one level in.
	}}

	w := New(Options{Reader: reader, Filter: noopFilter(), NumWorkers: 2, MaxDepth: 1, QuiesceDelay: 10 * time.Millisecond, PollInterval: 5 * time.Millisecond})
	ch := w.Walk(context.Background(), "/root")
	envs := collect(t, ch, 2*time.Second)

	if len(envs) != 2 {
		t.Fatalf("got %d envelopes, want 2 (root and /root/a only)", len(envs))
	}
	for _, e := range envs {
		if e.Root == "/root/a/b" {
			t.Errorf("walker descended past MaxDepth into %q", e.Root)
		}
	}
}

func TestWalkChunksLargeDirectories(t *testing.T) {
	var files []string
	for i := 0; i < 25; i++ {
		files = append(files, fmt.Sprintf("f%d", i))
	}
	reader := &fakeReader{tree: map[string]fakeDir{
		"/root": {files: files},
	}}

	w := New(Options{
		Reader: reader, Filter: noopFilter(), NumWorkers: 1,
		ChunkFiles: true, ChunkFilesNum: 10,
		QuiesceDelay: 10 * time.Millisecond, PollInterval: 5 * time.Millisecond,
	})
	ch := w.Walk(context.Background(), "/root")
	envs := collect(t, ch, 2*time.Second)

	if len(envs) != 3 {
		t.Fatalf("got %d envelopes, want 3 (two chunks + one trailing plain)", len(envs))
	}
	total := 0
	for i, e := range envs {
		total += len(e.Files)
		if i < 2 && e.Kind != model.Chunk {
			t.Errorf("envelope %d: Kind = %v, want Chunk", i, e.Kind)
		}
		if i == 2 && e.Kind != model.Plain {
			t.Errorf("envelope %d: Kind = %v, want Plain", i, e.Kind)
		}
	}
	if total != 25 {
		t.Errorf("total files = %d, want 25", total)
	}
}
