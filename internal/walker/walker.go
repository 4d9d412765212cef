// Package walker implements the Tree Walker Pool (C3): a single-producer,
// multi-consumer BFS over a directory tree using N worker goroutines and
// three coordination primitives (spec.md §4.3) — the pending queue of
// directories still to list, the set of directories currently being
// listed, and the results queue of emitted envelopes.
//
// # Concurrency model
//
// N long-lived worker goroutines pop from pendingQueue, call the configured
// Reader, push kept subdirectories back onto pendingQueue, and push emitted
// envelopes onto the results channel. This is the same fixed-worker-pool
// shape as a verification job queue: a shared work queue, an atomic count
// of in-flight work, and a channel draining into a single consumer — only
// here the "jobs" are self-replicating (each listdir call can enqueue more
// directories than it consumed).
//
// # Termination
//
// The walk is complete when the pending queue is empty, no worker is
// mid-listing, and (transiently) the results channel has nothing buffered.
// Because a worker may have just popped an entry and not yet published its
// discoveries, the monitor re-checks after a quiesce delay before declaring
// completion (spec.md §4.3) — a single snapshot of "all empty" is not
// sufficient.
//
// # Generators → iterators
//
// Walk returns a channel that is closed exactly once, when the walk is
// complete; it must be treated as a finite, single-pass sequence (Design
// Notes §9) — a second call to Walk starts an entirely new walk.
package walker

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/fstree/crawld/internal/dirreader"
	"github.com/fstree/crawld/internal/exclude"
	"github.com/fstree/crawld/internal/model"
)

// Options configures a Walker.
type Options struct {
	Reader        dirreader.Reader
	Filter        *exclude.Filter
	NumWorkers    int
	MaxDepth      int // 0 means unlimited
	ChunkFiles    bool
	ChunkFilesNum int
	QuiesceDelay  time.Duration
	PollInterval  time.Duration
	Logger        zerolog.Logger
}

// Walker performs a concurrent BFS over one root directory, emitting
// PathEnvelopes as directories are listed. A Walker is single-use: call
// Walk once per root.
type Walker struct {
	opts Options

	pending    *pendingQueue
	inProgress atomic.Int64
	results    chan model.PathEnvelope

	fatalErr atomic.Pointer[error]
}

// New creates a Walker. NumWorkers below 1 is treated as 1.
func New(opts Options) *Walker {
	if opts.NumWorkers < 1 {
		opts.NumWorkers = 1
	}
	if opts.QuiesceDelay <= 0 {
		opts.QuiesceDelay = 500 * time.Millisecond
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	return &Walker{opts: opts, pending: newPendingQueue()}
}

// Walk starts the BFS at root and returns the channel of emitted envelopes.
// The channel is closed when the walk completes, the context is cancelled,
// or an unexpected (non-skippable) error terminates a worker.
func (w *Walker) Walk(ctx context.Context, root string) <-chan model.PathEnvelope {
	w.results = make(chan model.PathEnvelope, 1024)

	for i := 0; i < w.opts.NumWorkers; i++ {
		go w.workerLoop(ctx)
	}

	w.pending.push(pendingEntry{path: root, depth: 0})

	go w.monitorLoop(ctx)

	return w.results
}

// Err returns the first unexpected (non-skippable) error that terminated a
// worker, or nil if the walk completed normally or was cancelled via ctx.
func (w *Walker) Err() error {
	if p := w.fatalErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (w *Walker) workerLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		entry, ok := w.pending.pop()
		if !ok {
			return
		}
		w.inProgress.Add(1)
		w.listOne(ctx, entry)
		w.inProgress.Add(-1)
	}
}

func (w *Walker) listOne(ctx context.Context, entry pendingEntry) {
	canonical, dirs, files, err := w.opts.Reader.Listdir(entry.path)
	if err != nil {
		if dirreader.IsSkippable(err) {
			w.opts.Logger.Warn().Err(err).Str("path", entry.path).Msg("skipping unreadable directory")
			return
		}
		w.opts.Logger.Error().Err(err).Str("path", entry.path).Msg("unexpected walker error")
		w.fatalErr.CompareAndSwap(nil, &err)
		return
	}
	if canonical == "" {
		canonical = entry.path
	}

	depth := entry.depth

	var keptDirs []string
	for _, d := range dirs {
		if w.opts.Filter.SkipDir(d) {
			continue
		}
		keptDirs = append(keptDirs, d)
		if depth+1 <= w.opts.MaxDepth || w.opts.MaxDepth <= 0 {
			select {
			case <-ctx.Done():
			default:
				w.pending.push(pendingEntry{path: d, depth: depth + 1})
			}
		}
	}

	var keptFiles []model.FileEntry
	for _, f := range files {
		if w.opts.Filter.SkipFile(filepath.Join(canonical, f.Name)) {
			continue
		}
		keptFiles = append(keptFiles, f)
	}

	w.emit(canonical, keptDirs, keptFiles)
}

// emit splits keptFiles into chunk envelopes of ChunkFilesNum files plus a
// trailing plain envelope, per spec.md §4.3's file-chunking rule. When
// chunking is disabled, or the file count never exceeds the threshold, a
// single plain envelope is emitted.
func (w *Walker) emit(root string, dirs []string, files []model.FileEntry) {
	if !w.opts.ChunkFiles || w.opts.ChunkFilesNum <= 0 || len(files) <= w.opts.ChunkFilesNum {
		w.results <- model.PathEnvelope{Kind: model.Plain, Root: root, Dirs: dirs, Files: files}
		return
	}

	i := 0
	for len(files)-i > w.opts.ChunkFilesNum {
		w.results <- model.PathEnvelope{
			Kind:  model.Chunk,
			Root:  root,
			Files: files[i : i+w.opts.ChunkFilesNum],
		}
		i += w.opts.ChunkFilesNum
	}
	w.results <- model.PathEnvelope{Kind: model.Plain, Root: root, Dirs: dirs, Files: files[i:]}
}

func (w *Walker) idle() bool {
	return w.pending.len() == 0 && w.inProgress.Load() == 0 && len(w.results) == 0
}

func (w *Walker) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.pending.closeQueue()
			close(w.results)
			return
		case <-ticker.C:
			if w.fatalErr.Load() != nil {
				w.pending.closeQueue()
				close(w.results)
				return
			}
			if !w.idle() {
				continue
			}
			// Quiesce: a worker may have just popped an entry and not yet
			// published its discoveries. Re-check after a short delay
			// before declaring the walk complete.
			time.Sleep(w.opts.QuiesceDelay)
			if w.idle() {
				w.pending.closeQueue()
				close(w.results)
				return
			}
		}
	}
}
