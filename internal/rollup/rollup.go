// Package rollup implements the Rollup Driver (C8): after the crawl queue
// drains, scrolls directory docs deepest-first and enqueues RollupJobs with
// the same adaptive batching algorithm as the Batch Dispatcher, so workers
// aggregate filesize/item counts bottom-up (spec.md §4.8).
package rollup

import (
	"context"
	"time"

	"github.com/fstree/crawld/internal/broker"
	"github.com/fstree/crawld/internal/model"
	"github.com/fstree/crawld/internal/scroller"
)

// Options configures a Driver.
type Options struct {
	Broker    *broker.Broker
	Scroller  *scroller.Scroller
	Args      model.RunArgs
	StartSize int
	MaxSize   int
	StepSize  int
	Adaptive  bool
}

// Driver scrolls directory docs and enqueues rollup jobs.
type Driver struct {
	opts      Options
	batchSize int
}

// New builds a Driver.
func New(opts Options) *Driver {
	size := opts.StartSize
	if size <= 0 {
		size = 1
	}
	return &Driver{opts: opts, batchSize: size}
}

// Run scrolls every directory doc under rootPath (deepest path_parent
// first) and enqueues RollupJobs in adaptively-sized batches.
func (d *Driver) Run(ctx context.Context, rootPath string, rootDepth, maxDepth int) (int, error) {
	entries, err := d.opts.Scroller.ScrollRollupInput(ctx, scroller.Query{
		PathPrefix: rootPath,
		MaxDepth:   maxDepth,
		RootDepth:  rootDepth,
		Descending: true,
		DocType:    "directory",
	})
	if err != nil {
		return 0, err
	}

	jobs := 0
	var batch []model.RollupEntry
	for _, e := range entries {
		mtime, _ := time.Parse(time.RFC3339, e.Mtime)
		batch = append(batch, model.RollupEntry{DocID: e.ID, FullPath: e.FullPath, Mtime: mtime})

		if len(batch) >= d.batchSize {
			if err := d.flush(ctx, &batch, &jobs); err != nil {
				return jobs, err
			}
		}
	}
	if err := d.flush(ctx, &batch, &jobs); err != nil {
		return jobs, err
	}
	return jobs, nil
}

func (d *Driver) flush(ctx context.Context, batch *[]model.RollupEntry, jobs *int) error {
	if len(*batch) == 0 {
		return nil
	}

	job := model.RollupJob{Entries: *batch, Args: d.opts.Args}
	if err := d.opts.Broker.Enqueue(ctx, broker.Rollup, job); err != nil {
		return err
	}
	*jobs++
	*batch = nil

	if !d.opts.Adaptive {
		return nil
	}

	pending, err := d.opts.Broker.QueueLen(ctx, broker.Rollup)
	if err != nil {
		return err
	}
	if pending == 0 {
		d.batchSize = max(d.opts.StartSize, d.batchSize-d.opts.StepSize)
	} else {
		d.batchSize = min(d.opts.MaxSize, d.batchSize+d.opts.StepSize)
	}
	return nil
}
