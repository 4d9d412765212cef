// Package crawl wires components C1 through C10 into the control flow a
// single invocation follows: Index Lifecycle create/tune, optional Reindex
// Deleter, Tree Walker Pool, Batch Dispatcher, wait for crawl-queue drain,
// Rollup Driver, wait for rollup-queue drain, Index Lifecycle
// restore/merge (spec.md §2's control-flow line). Grounded on the
// teacher's cmd/dupedog/dedupe.go phase-by-phase orchestration shape.
package crawl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fstree/crawld/internal/broker"
	"github.com/fstree/crawld/internal/bulkwriter"
	"github.com/fstree/crawld/internal/carryover"
	"github.com/fstree/crawld/internal/dirreader"
	"github.com/fstree/crawld/internal/dispatch"
	"github.com/fstree/crawld/internal/exclude"
	"github.com/fstree/crawld/internal/index"
	"github.com/fstree/crawld/internal/model"
	"github.com/fstree/crawld/internal/monitor"
	"github.com/fstree/crawld/internal/reindexer"
	"github.com/fstree/crawld/internal/rollup"
	rt "github.com/fstree/crawld/internal/runtime"
	"github.com/fstree/crawld/internal/scroller"
	"github.com/fstree/crawld/internal/walker"
)

// Run executes one full crawl invocation against rc, following the
// control flow above. It returns once the crawl, rollup, and index
// restoration phases have all completed (or ctx was cancelled).
func Run(rc *rt.Context, args model.RunArgs) error {
	ctx := rc.Ctx
	log := rc.Logger

	b := broker.New(rc.Broker)
	lifecycle := index.New(rc.ES, nil)
	writer := bulkwriter.New(rc.ES, rc.Cfg.Timeouts.BulkChunkSize, rc.Cfg.Timeouts.RequestTimeout, args.SplitFiles, rc.Cfg.Elasticsearch.WaitForYellow)

	if err := writer.WaitForYellow(ctx); err != nil {
		log.Warn().Err(err).Msg("cluster health check failed, continuing")
	}

	if err := lifecycle.EnsureCreated(ctx, args.Reindex, args.ForceDropExisting, os.Stdin); err != nil {
		return err
	}
	if err := lifecycle.TuneForWrite(ctx); err != nil {
		return err
	}

	if err := writeCrawlStat(ctx, writer, rc.ES.IndexName, args.RootDir, model.StateRunning); err != nil {
		log.Warn().Err(err).Msg("failed to write crawlstat running doc")
	}
	if err := writeDiskSpace(ctx, writer, rc.ES.IndexName, args.RootDir); err != nil {
		log.Warn().Err(err).Msg("failed to write diskspace doc")
	}

	// carryoverInline is embedded directly in each CrawlJob when small
	// enough; above carryoverSpillThreshold entries it is spilled to an
	// on-disk Store instead, and args.CarryoverStorePath tells workers
	// where to look it up (avoids repeating a huge map in every job).
	const carryoverSpillThreshold = 10000
	var carryoverInline *model.ReindexCarryover

	if args.Reindex {
		sc := scroller.New(rc.ES)
		rx := reindexer.New(rc.ES, sc)
		carry, err := rx.Run(ctx, args.RootDir, args.ReindexRecursive)
		if err != nil {
			return err
		}

		if len(carry.File)+len(carry.Directory) > carryoverSpillThreshold {
			spillPath := filepath.Join(os.TempDir(), fmt.Sprintf("crawld-carryover-%d.db", os.Getpid()))
			store, err := carryover.Spill(spillPath, carry)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			args.CarryoverStorePath = spillPath
		} else {
			carryoverInline = carry
		}
	}

	if !args.NoWait {
		if err := monitor.WaitForDrain(ctx, b, rc.Cfg.Timeouts.PollInterval, broker.Crawl); err != nil {
			return err
		}
	}

	startTime := time.Now()

	if !args.DirCalcOnly {
		if err := runWalkAndDispatch(ctx, rc, b, args, carryoverInline); err != nil {
			return err
		}
	}

	if err := monitor.WaitForDrain(ctx, b, rc.Cfg.Timeouts.PollInterval, broker.Crawl); err != nil {
		return err
	}

	if err := writeCrawlStat(ctx, writer, rc.ES.IndexName, args.RootDir, model.StateFinishedCrawl); err != nil {
		log.Warn().Err(err).Msg("failed to write crawlstat finished_crawl doc")
	}

	driver := rollup.New(rollup.Options{
		Broker:    b,
		Scroller:  scroller.New(rc.ES),
		Args:      args,
		StartSize: rc.Cfg.Batch.StartSize,
		MaxSize:   rc.Cfg.Batch.MaxSize,
		StepSize:  rc.Cfg.Batch.StepSize,
		Adaptive:  args.AdaptiveBatch,
	})
	rootDepth := strings.Count(filepath.Clean(args.RootDir), string(filepath.Separator))
	if _, err := driver.Run(ctx, args.RootDir, rootDepth, args.MaxDirCalcDepth); err != nil {
		return err
	}

	if err := monitor.WaitForDrain(ctx, b, rc.Cfg.Timeouts.PollInterval, broker.Rollup); err != nil {
		return err
	}

	if err := writeCrawlStat(ctx, writer, rc.ES.IndexName, args.RootDir, model.StateFinishedDirCalc); err != nil {
		log.Warn().Err(err).Msg("failed to write crawlstat finished_dircalc doc")
	}

	if err := lifecycle.RestoreDefaults(ctx); err != nil {
		return err
	}
	if err := lifecycle.ForceMerge(ctx, args.OptimizeIndex); err != nil {
		log.Warn().Err(err).Msg("force-merge failed, continuing")
	}

	log.Info().Dur("elapsed", time.Since(startTime)).Msg("crawl complete")
	return nil
}

func runWalkAndDispatch(ctx context.Context, rc *rt.Context, b *broker.Broker, args model.RunArgs, carry *model.ReindexCarryover) error {
	reader := selectReader(args)
	filter := exclude.New(
		rc.Cfg.Excludes.IncludeDirs, rc.Cfg.Excludes.ExcludeDirs,
		rc.Cfg.Excludes.IncludeFiles, rc.Cfg.Excludes.ExcludeFiles,
	)

	walkThreads := args.WalkThreads
	if walkThreads <= 0 {
		walkThreads = 2 * runtime.NumCPU()
	}

	w := treeWalker(reader, filter, walkThreads, args, rc)
	results := w.Walk(ctx, args.RootDir)

	startSize := rc.Cfg.Batch.StartSize
	if args.BatchSize > 0 && !args.AdaptiveBatch {
		startSize = args.BatchSize
	}

	d := dispatch.New(dispatch.Options{
		Broker:       b,
		Args:         args,
		Carryover:    carry,
		StartSize:    startSize,
		MaxSize:      rc.Cfg.Batch.MaxSize,
		StepSize:     rc.Cfg.Batch.StepSize,
		MaxFiles:     rc.Cfg.Batch.AdaptiveBatchMaxFiles,
		Adaptive:     args.AdaptiveBatch,
		ShowProgress: true,
	})
	if err := d.Run(ctx, results); err != nil {
		return err
	}
	d.Finish()

	return w.Err()
}

func treeWalker(reader dirreader.Reader, filter *exclude.Filter, walkThreads int, args model.RunArgs, rc *rt.Context) *walker.Walker {
	return walker.New(walker.Options{
		Reader:        reader,
		Filter:        filter,
		NumWorkers:    walkThreads,
		MaxDepth:      args.EffectiveMaxDepth(),
		ChunkFiles:    args.ChunkFiles,
		ChunkFilesNum: args.ChunkFilesNum,
		QuiesceDelay:  rc.Cfg.Timeouts.QuiesceDelay,
		PollInterval:  rc.Cfg.Timeouts.PollInterval,
		Logger:        rc.Logger,
	})
}

func selectReader(args model.RunArgs) dirreader.Reader {
	switch {
	case args.CrawlAPI:
		return dirreader.NewHTTPAPI(args.RootDir, 30*time.Second)
	case len(args.StorageAgentHosts) > 0:
		return dirreader.NewAgent(args.StorageAgentHosts, 8, 30*time.Second)
	default:
		return dirreader.NewLocal()
	}
}

func writeCrawlStat(ctx context.Context, w *bulkwriter.Writer, indexName, path string, state model.CrawlState) error {
	doc := model.CrawlStatDoc{Path: path, State: state, IndexingDate: time.Now().UTC()}
	return w.Bulk(ctx, []bulkwriter.Doc{{Index: indexName, OpType: bulkwriter.OpIndex, Body: doc}})
}

func writeDiskSpace(ctx context.Context, w *bulkwriter.Writer, indexName, path string) error {
	total, used, free, available, err := diskSpace(path)
	if err != nil {
		return err
	}
	doc := model.DiskSpaceDoc{
		Path: path, Total: total, Used: used, Free: free, Available: available,
		IndexingDate: time.Now().UTC(),
	}
	return w.Bulk(ctx, []bulkwriter.Doc{{Index: indexName, OpType: bulkwriter.OpIndex, Body: doc}})
}
