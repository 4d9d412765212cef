package dirreader

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/fstree/crawld/internal/model"
)

// batchSize bounds how many directory entries are pulled from ReadDir at a
// time, keeping memory flat for directories with millions of entries.
const batchSize = 1000

// Local lists directories directly against the local filesystem. Each file
// entry carries only its name, size and modification time (from the
// directory entry's Info); the rest of the stat data is left for workers.
type Local struct{}

// NewLocal returns a Reader backed by the local filesystem.
func NewLocal() *Local { return &Local{} }

// Listdir implements Reader.
func (Local) Listdir(path string) (string, []string, []model.FileEntry, error) {
	canonical, err := filepath.Abs(path)
	if err != nil {
		canonical = path
	}

	dir, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) || os.IsNotExist(err) {
			return canonical, nil, nil, &ErrSkip{Path: path, Err: err}
		}
		return canonical, nil, nil, err
	}
	defer func() { _ = dir.Close() }()

	var dirs []string
	var files []model.FileEntry

	for {
		entries, err := dir.ReadDir(batchSize)
		if len(entries) == 0 {
			if err != nil && err != io.EOF {
				if os.IsPermission(err) {
					return canonical, dirs, files, &ErrSkip{Path: path, Err: err}
				}
				return canonical, dirs, files, err
			}
			break
		}

		for _, entry := range entries {
			name := entry.Name()
			if !utf8.ValidString(name) {
				return canonical, dirs, files, &ErrSkip{Path: filepath.Join(path, name), Err: errInvalidUnicode}
			}

			if entry.Type()&fs.ModeSymlink != 0 {
				continue // never follow symlinks
			}

			if entry.IsDir() {
				dirs = append(dirs, filepath.Join(path, name))
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue // race with deletion/permission change: skip silently
			}
			files = append(files, model.FileEntry{
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	return canonical, dirs, files, nil
}

var errInvalidUnicode = errInvalidUnicodeType{}

type errInvalidUnicodeType struct{}

func (errInvalidUnicodeType) Error() string { return "invalid unicode in directory entry name" }
