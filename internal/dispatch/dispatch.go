// Package dispatch implements the Batch Dispatcher (C4): the single
// consumer draining the Tree Walker Pool's results queue, which groups
// envelopes into batches and pushes them onto the crawl job queue with a
// self-tuning batch size (spec.md §4.4).
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/fstree/crawld/internal/broker"
	"github.com/fstree/crawld/internal/model"
	"github.com/fstree/crawld/internal/progress"
)

// Options configures a Dispatcher.
type Options struct {
	Broker       *broker.Broker
	Args         model.RunArgs
	Carryover    *model.ReindexCarryover
	StartSize    int
	MaxSize      int
	StepSize     int
	MaxFiles     int // adaptivebatch_maxfiles; only consulted when Adaptive is set
	Adaptive     bool
	ShowProgress bool
}

// Dispatcher batches envelopes and pushes CrawlJobs onto the broker.
type Dispatcher struct {
	opts Options

	batchSize    int
	batch        []model.PathEnvelope
	filesInBatch int

	stats *stats
	bar   *progress.Bar
}

type stats struct {
	dirsSeen    int64
	dirsSkipped int64
	filesSeen   int64
	jobsSent    int64
	startTime   time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("Dispatched %d dirs (%d skipped empty), %d files, %d jobs in %.1fs",
		s.dirsSeen, s.dirsSkipped, s.filesSeen, s.jobsSent, time.Since(s.startTime).Seconds())
}

// New builds a Dispatcher. startSize/maxSize/stepSize/maxFiles come from
// CrawlConfig.Batch; a zero startSize defaults batchSize to 1 (flush every
// envelope) to avoid ever silently accumulating an unbounded batch.
func New(opts Options) *Dispatcher {
	size := opts.StartSize
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{opts: opts, batchSize: size, stats: &stats{startTime: time.Now()}}
}

// Run drains envelopes until results is closed, flushing batches to the
// crawl queue, then issues a final flush for any partial batch. Returns
// once every batch built from results has been enqueued.
func (d *Dispatcher) Run(ctx context.Context, results <-chan model.PathEnvelope) error {
	d.bar = progress.New(d.opts.ShowProgress, -1)
	d.bar.Describe(d.stats)

	for env := range results {
		if err := d.consume(ctx, env); err != nil {
			return err
		}
	}
	return d.flush(ctx)
}

func (d *Dispatcher) consume(ctx context.Context, env model.PathEnvelope) error {
	if env.Kind == model.Plain {
		d.stats.dirsSeen++
		if len(env.Dirs) == 0 && len(env.Files) == 0 && !d.opts.Args.IndexEmptyDirs {
			d.stats.dirsSkipped++
			d.bar.Describe(d.stats)
			return nil
		}
	}

	env.Root = d.opts.Args.ReplacePath(env.Root)
	for i := range env.Dirs {
		env.Dirs[i] = d.opts.Args.ReplacePath(env.Dirs[i])
	}

	d.stats.filesSeen += int64(len(env.Files))
	d.batch = append(d.batch, env)
	d.filesInBatch += len(env.Files)
	d.bar.Describe(d.stats)

	if len(d.batch) >= d.batchSize {
		return d.flush(ctx)
	}
	if d.opts.Adaptive && d.opts.MaxFiles > 0 && d.filesInBatch >= d.opts.MaxFiles {
		return d.flush(ctx)
	}
	return nil
}

// flush pushes the accumulated batch as one CrawlJob, then adjusts
// batchSize for the next round per spec.md §4.4's adaptive rule.
func (d *Dispatcher) flush(ctx context.Context) error {
	if len(d.batch) == 0 {
		return nil
	}

	job := model.CrawlJob{Envelopes: d.batch, Args: d.opts.Args, Carryover: d.opts.Carryover}
	if err := d.opts.Broker.Enqueue(ctx, broker.Crawl, job); err != nil {
		return err
	}
	d.stats.jobsSent++
	d.bar.Describe(d.stats)

	d.batch = nil
	d.filesInBatch = 0

	if !d.opts.Adaptive {
		return nil
	}

	pending, err := d.opts.Broker.QueueLen(ctx, broker.Crawl)
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

// Finish renders the final progress line. Call after Run returns nil.
func (d *Dispatcher) Finish() {
	d.bar.Finish(d.stats)
}
