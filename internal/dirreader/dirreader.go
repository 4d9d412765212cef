// Package dirreader abstracts the three listing backends (local scan, HTTP
// crawl-API, storage-agent RPC) behind one Reader interface (C1). Symbolic
// links are never followed; permission-denied and not-found errors are
// reported via ErrSkip so callers log-and-continue instead of aborting.
package dirreader

import (
	"errors"

	"github.com/fstree/crawld/internal/model"
)

// ErrSkip wraps a per-directory listing error that the walker should log
// at warning level and treat as "this directory yielded nothing", without
// aborting the rest of the walk (spec.md §4.1, §7).
type ErrSkip struct {
	Path string
	Err  error
}

func (e *ErrSkip) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *ErrSkip) Unwrap() error { return e.Err }

// IsSkippable reports whether err is an ErrSkip (permission-denied,
// not-found, or a backend-reported equivalent) rather than an unexpected
// failure that should propagate and terminate the walker thread.
func IsSkippable(err error) bool {
	var skip *ErrSkip
	return errors.As(err, &skip)
}

// Reader lists one directory's immediate children. Implementations must
// never follow symlinks: a symlinked subdirectory is reported as neither a
// dir nor a file entry.
type Reader interface {
	// Listdir lists path, returning its canonical form plus the
	// subdirectory paths and file entries found directly within it. The
	// walker pushes each returned subdirectory as a path to list next.
	Listdir(path string) (canonicalPath string, dirs []string, files []model.FileEntry, err error)
}
