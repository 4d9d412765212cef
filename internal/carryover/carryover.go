// Package carryover spills a ReindexCarryover map to disk when it is too
// large to embed in every CrawlJob payload. It is the same self-cleaning
// open-new-db-per-run pattern the teacher project uses for its hash cache,
// repurposed here for tag carryover: a fresh BoltDB is built once from the
// in-memory map produced by the reindex deleter, and the crawl passes its
// file path to workers in RunArgs.CarryoverStorePath. LookupFile and
// LookupDirectory answer per-path queries against it.
package carryover

import (
	"encoding/json"
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"

	"github.com/fstree/crawld/internal/model"
)

const (
	fileBucket = "file"
	dirBucket  = "directory"
)

// Store is an on-disk, read-after-build carryover lookup.
type Store struct {
	db      *bolt.DB
	path    string
	enabled bool
}

// Spill writes carryover into a fresh BoltDB at path and returns a Store
// for looking it up. An empty carryover (no file or directory entries)
// returns a disabled Store that reports every lookup as a miss, avoiding
// an unnecessary file for the common non-reindex run.
func Spill(path string, carryover *model.ReindexCarryover) (*Store, error) {
	if len(carryover.File) == 0 && len(carryover.Directory) == 0 {
		return &Store{enabled: false}, nil
	}

	_ = os.Remove(path) // best effort: start from a clean file each run
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open carryover store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		fb, err := tx.CreateBucketIfNotExists([]byte(fileBucket))
		if err != nil {
			return err
		}
		for p, tags := range carryover.File {
			data, err := json.Marshal(tags)
			if err != nil {
				return err
			}
			if err := fb.Put([]byte(p), data); err != nil {
				return err
			}
		}

		db, err := tx.CreateBucketIfNotExists([]byte(dirBucket))
		if err != nil {
			return err
		}
		for p, tags := range carryover.Directory {
			data, err := json.Marshal(tags)
			if err != nil {
				return err
			}
			if err := db.Put([]byte(p), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("populate carryover store: %w", err)
	}

	return &Store{db: db, path: path, enabled: true}, nil
}

// LookupFile returns the carried-over tags for a file path, if any.
func (s *Store) LookupFile(path string) (model.TagPair, bool) {
	return s.lookup(fileBucket, path)
}

// LookupDirectory returns the carried-over tags for a directory path, if any.
func (s *Store) LookupDirectory(path string) (model.TagPair, bool) {
	return s.lookup(dirBucket, path)
}

func (s *Store) lookup(bucket, path string) (model.TagPair, bool) {
	if !s.enabled {
		return model.TagPair{}, false
	}
	var tags model.TagPair
	var found bool
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		data := b.Get([]byte(path))
		if data == nil {
			return nil
		}
		found = json.Unmarshal(data, &tags) == nil
		return nil
	})
	return tags, found
}

// Close closes the store and removes its backing file.
func (s *Store) Close() error {
	if !s.enabled {
		return nil
	}
	err := s.db.Close()
	_ = os.Remove(s.path)
	return err
}
