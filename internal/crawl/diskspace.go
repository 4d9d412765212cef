package crawl

import "golang.org/x/sys/unix"

// diskSpace reports total/free/available bytes for the filesystem backing
// path, grounded on the same golang.org/x/sys/unix statfs call the example
// pack's storage tooling uses for local volume introspection.
func diskSpace(path string) (total, used, free, available int64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, 0, 0, err
	}
	total = int64(stat.Blocks) * int64(stat.Bsize)
	free = int64(stat.Bfree) * int64(stat.Bsize)
	available = int64(stat.Bavail) * int64(stat.Bsize)
	used = total - free
	return total, used, free, available, nil
}
