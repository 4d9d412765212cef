// Package model holds the entities at the dispatcher/worker design boundary:
// the immutable run configuration, the envelopes the walker emits, the job
// payloads placed on the broker, and the index document shapes.
package model

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Semaphore implements a counting semaphore using a buffered channel.
// It bounds concurrent access to a resource by blocking when the limit
// is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }

// Sorted is an ordered collection that maintains sort order by a key function.
type Sorted[T any, K cmp.Ordered] struct {
	items   []T
	keyFunc func(T) K
	desc    bool
}

// NewSorted creates a sorted collection from items using keyFunc for ordering.
func NewSorted[T any, K cmp.Ordered](items []T, keyFunc func(T) K) Sorted[T, K] {
	return newSorted(items, keyFunc, false)
}

// NewSortedDesc creates a collection sorted in descending key order.
func NewSortedDesc[T any, K cmp.Ordered](items []T, keyFunc func(T) K) Sorted[T, K] {
	return newSorted(items, keyFunc, true)
}

func newSorted[T any, K cmp.Ordered](items []T, keyFunc func(T) K, desc bool) Sorted[T, K] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b T) int {
		c := cmp.Compare(keyFunc(a), keyFunc(b))
		if desc {
			return -c
		}
		return c
	})
	return Sorted[T, K]{items: sorted, keyFunc: keyFunc, desc: desc}
}

// Items returns the sorted items.
func (s Sorted[T, K]) Items() []T { return s.items }

// Len returns the number of items.
func (s Sorted[T, K]) Len() int { return len(s.items) }

// EnvelopeKind distinguishes a fully-enumerated directory from a file-chunk
// continuation of one still being enumerated.
type EnvelopeKind int

const (
	// Plain is a fully enumerated directory: all subdirs and the (possibly
	// tail-only) remaining files.
	Plain EnvelopeKind = iota
	// Chunk carries a head slice of a directory's files; more chunks or a
	// trailing Plain envelope for the same directory follow.
	Chunk
)

// PathEnvelope is one (directory, subdirs, files) tuple emitted by the
// walker, optionally marked as a file-chunk continuation.
type PathEnvelope struct {
	Kind  EnvelopeKind
	Root  string
	Dirs  []string
	Files []FileEntry
}

// FileEntry is a filesystem entry discovered by a directory reader backend.
// The local and crawl-API backends set Size and ModTime from the listing;
// the agent backend sets whatever the agent sends. All other stat data is
// left for workers.
type FileEntry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// RunArgs carries per-invocation options, distinct from the immutable
// CrawlConfig that lives for the whole process.
type RunArgs struct {
	RootDir           string
	MtimeDays         int
	MinSizeBytes      int64
	IndexEmptyDirs    bool
	MaxDepth          int
	MaxDirCalcDepth   int
	BatchSize         int
	AdaptiveBatch     bool
	WalkThreads       int
	AutoTag           string
	SizeOnDisk        bool
	BlockSize         int64
	Reindex           bool
	ReindexRecursive  bool
	ForceDropExisting bool
	FindDupes         bool
	CopyTagsIndex     string
	HotDirsIndex      string
	SplitFiles        bool
	SplitFilesNum     int
	ChunkFiles        bool
	ChunkFilesNum     int
	NoWait            bool
	CrawlAPI          bool
	StorageAgentHosts []string
	DirCalcOnly       bool
	OptimizeIndex     bool
	ReplaceFrom       string
	ReplaceTo         string
	// CarryoverStorePath names an on-disk carryover.Store workers should
	// consult instead of CrawlJob.Carryover, set when the in-memory
	// ReindexCarryover was too large to embed in every job payload.
	CarryoverStorePath string
}

// ReplacePath applies the --replacepath prefix substitution (only when path
// starts with ReplaceFrom) plus Windows separator normalization, so paths
// captured on one host can be indexed as if captured from another's mount
// point.
func (a RunArgs) ReplacePath(path string) string {
	if a.ReplaceFrom != "" {
		if rest, ok := strings.CutPrefix(path, a.ReplaceFrom); ok {
			path = a.ReplaceTo + rest
		}
	}
	return strings.ReplaceAll(path, `\`, "/")
}

// EffectiveMaxDepth clamps the walk depth to 1 under a non-recursive
// reindex, regardless of the user-supplied MaxDepth (spec invariant: a
// reindex never re-discovers structure beneath the target path).
func (a RunArgs) EffectiveMaxDepth() int {
	if a.Reindex && !a.ReindexRecursive {
		return 1
	}
	return a.MaxDepth
}

// TagPair is a path's user-assigned tag and custom tag, captured by the
// reindex deleter before it deletes the existing docs.
type TagPair struct {
	Tag       string
	TagCustom string
}

// ReindexCarryover maps full path to the tags that existed on that path
// before a reindex, so workers can re-apply them to the freshly crawled
// docs. Built once before the rewalk and read-only afterward.
type ReindexCarryover struct {
	File      map[string]TagPair
	Directory map[string]TagPair
}

// NewReindexCarryover returns an empty carryover map pair.
func NewReindexCarryover() *ReindexCarryover {
	return &ReindexCarryover{
		File:      make(map[string]TagPair),
		Directory: make(map[string]TagPair),
	}
}

// CrawlJob is the payload placed on the "crawl" broker queue.
type CrawlJob struct {
	Envelopes []PathEnvelope
	Args      RunArgs
	Carryover *ReindexCarryover
}

// RollupEntry is one directory doc awaiting a size/item rollup.
type RollupEntry struct {
	DocID    string
	FullPath string
	Mtime    time.Time
	Atime    time.Time
	Ctime    time.Time
}

// RollupJob is the payload placed on the "rollup" broker queue.
type RollupJob struct {
	Entries []RollupEntry
	Args    RunArgs
}

// DirectoryDoc mirrors the "directory" index mapping (essential fields).
type DirectoryDoc struct {
	Filename     string    `json:"filename"`
	PathParent   string    `json:"path_parent"`
	FileSize     int64     `json:"filesize"`
	Items        int64     `json:"items"`
	ItemsFiles   int64     `json:"items_files"`
	ItemsSubdirs int64     `json:"items_subdirs"`
	Owner        string    `json:"owner"`
	Group        string    `json:"group"`
	LastModified time.Time `json:"last_modified"`
	LastAccess   time.Time `json:"last_access"`
	LastChange   time.Time `json:"last_change"`
	Hardlinks    int       `json:"hardlinks"`
	Inode        string    `json:"inode"`
	Tag          []string  `json:"tag"`
	TagCustom    []string  `json:"tag_custom"`
	CrawlTime    float64   `json:"crawl_time"`
	WorkerName   string    `json:"worker_name"`
	IndexingDate time.Time `json:"indexing_date"`
}

// FileDoc mirrors the "file" index mapping (essential fields).
type FileDoc struct {
	Filename     string    `json:"filename"`
	Extension    string    `json:"extension"`
	PathParent   string    `json:"path_parent"`
	FileSize     int64     `json:"filesize"`
	Owner        string    `json:"owner"`
	Group        string    `json:"group"`
	LastModified time.Time `json:"last_modified"`
	LastAccess   time.Time `json:"last_access"`
	LastChange   time.Time `json:"last_change"`
	Hardlinks    int       `json:"hardlinks"`
	Inode        string    `json:"inode"`
	FileHash     string    `json:"filehash,omitempty"`
	Tag          []string  `json:"tag"`
	TagCustom    []string  `json:"tag_custom"`
	DupeMD5      string    `json:"dupe_md5,omitempty"`
	WorkerName   string    `json:"worker_name"`
	IndexingDate time.Time `json:"indexing_date"`
}

// DiskSpaceDoc mirrors the "diskspace" index mapping.
type DiskSpaceDoc struct {
	Path         string    `json:"path"`
	Total        int64     `json:"total"`
	Used         int64     `json:"used"`
	Free         int64     `json:"free"`
	Available    int64     `json:"available"`
	IndexingDate time.Time `json:"indexing_date"`
}

// CrawlState enumerates crawlstat.state values.
type CrawlState string

const (
	StateRunning         CrawlState = "running"
	StateFinishedCrawl   CrawlState = "finished_crawl"
	StateFinishedDirCalc CrawlState = "finished_dircalc"
)

// CrawlStatDoc mirrors the "crawlstat" index mapping.
type CrawlStatDoc struct {
	Path         string     `json:"path"`
	State        CrawlState `json:"state"`
	CrawlTime    float64    `json:"crawl_time"`
	IndexingDate time.Time  `json:"indexing_date"`
}

// WorkerDoc mirrors the "worker" index mapping.
type WorkerDoc struct {
	WorkerName   string    `json:"worker_name"`
	DirCount     int64     `json:"dir_count"`
	FileCount    int64     `json:"file_count"`
	BulkTime     float64   `json:"bulk_time"`
	CrawlTime    float64   `json:"crawl_time"`
	IndexingDate time.Time `json:"indexing_date"`
}
