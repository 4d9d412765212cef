package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fstree/crawld/internal/config"
	"github.com/fstree/crawld/internal/crawl"
	"github.com/fstree/crawld/internal/logging"
	"github.com/fstree/crawld/internal/model"
	"github.com/fstree/crawld/internal/runtime"
)

// crawlOptions holds the CLI flags for the crawl subcommand, named after
// spec.md §6.4's short-flag surface.
type crawlOptions struct {
	rootDir           string
	indexName         string
	mtimeDays         int
	minSizeStr        string
	indexEmptyDirs    bool
	maxDepth          int
	maxDirCalcDepth   int
	batchSize         int
	adaptiveBatch     bool
	walkThreads       int
	autoTag           string
	sizeOnDisk        bool
	blockSize         int64
	reindex           bool
	reindexRecursive  bool
	forceDropExisting bool
	findDupes         bool
	copyTagsIndex     string
	hotDirsIndex      string
	splitFiles        bool
	splitFilesNum     int
	chunkFiles        bool
	chunkFilesNum     int
	noWait            bool
	crawlAPI          bool
	storageAgentHosts []string
	dirCalcOnly       bool
	optimizeIndex     bool
	replaceFrom       string
	replaceTo         string
	quiet             bool
	verbose           bool
	debug             bool
}

// newCrawlCmd creates the crawl subcommand.
func newCrawlCmd(ctx context.Context) *cobra.Command {
	opts := &crawlOptions{
		minSizeStr:      "0",
		maxDepth:        -1,
		maxDirCalcDepth: -1,
		batchSize:       0,
		splitFilesNum:   1000,
		chunkFilesNum:   50000,
	}

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Walk a directory tree and index it",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCrawl(ctx, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.rootDir, "rootdir", "d", "", "Root directory to crawl")
	f.StringVarP(&opts.indexName, "index", "i", "", "Target index name (must match diskover-*)")
	f.IntVarP(&opts.mtimeDays, "mtime-days", "m", 0, "Only index files modified within this many days (0 disables)")
	f.StringVarP(&opts.minSizeStr, "min-size", "s", opts.minSizeStr, "Minimum file size (e.g. 100, 1K, 10M)")
	f.BoolVarP(&opts.indexEmptyDirs, "index-empty-dirs", "e", false, "Index directories with no files or subdirectories")
	f.IntVarP(&opts.maxDepth, "maxdepth", "M", opts.maxDepth, "Maximum walk depth (-1 disables)")
	f.IntVarP(&opts.maxDirCalcDepth, "maxdcdepth", "c", opts.maxDirCalcDepth, "Maximum rollup depth (-1 disables)")
	f.IntVarP(&opts.batchSize, "batchsize", "b", opts.batchSize, "Envelopes per crawl job batch (0 = [batch] start_size; ignored with -a)")
	f.BoolVarP(&opts.adaptiveBatch, "adaptivebatch", "a", false, "Grow/shrink batch size against queue depth")
	f.IntVarP(&opts.walkThreads, "walkthreads", "T", 0, "Walker worker count (0 = 2x logical CPUs)")
	f.StringVarP(&opts.autoTag, "autotag", "A", "", "Auto-tag rule set name")
	f.BoolVarP(&opts.sizeOnDisk, "sizeondisk", "S", false, "Report size-on-disk instead of apparent size")
	f.Int64VarP(&opts.blockSize, "blocksize", "B", 512, "Block size for size-on-disk calculation")
	f.BoolVarP(&opts.reindex, "reindex", "r", false, "Delete and re-crawl the target path, preserving tags")
	f.BoolVarP(&opts.reindexRecursive, "reindexrecursive", "R", false, "Reindex recursively below the target path")
	f.BoolVarP(&opts.forceDropExisting, "forcedropexisting", "F", false, "Delete and recreate the index without prompting")
	f.BoolVarP(&opts.findDupes, "finddupes", "D", false, "Flag duplicate files by content hash")
	f.StringVarP(&opts.copyTagsIndex, "copytags", "C", "", "Copy tags from another index (INDEX2)")
	f.StringVarP(&opts.hotDirsIndex, "hotdirs", "H", "", "Compare against another index for hot-directory detection")
	f.BoolVar(&opts.splitFiles, "splitfiles", false, "Split large directories' files across multiple crawl jobs")
	f.IntVar(&opts.splitFilesNum, "splitfilesnum", opts.splitFilesNum, "Files per split, when --splitfiles is set")
	f.BoolVar(&opts.chunkFiles, "chunkfiles", false, "Emit head chunks for directories with very large file counts")
	f.IntVar(&opts.chunkFilesNum, "chunkfilesnum", opts.chunkFilesNum, "Files per chunk, when --chunkfiles is set")
	f.BoolVar(&opts.noWait, "nowait", false, "Do not block on queue drain before enqueueing")
	f.BoolVar(&opts.crawlAPI, "crawlapi", false, "List directories via the remote crawl API instead of locally")
	f.StringSliceVar(&opts.storageAgentHosts, "storagent", nil, "Storage agent hosts (host:port,...)")
	f.BoolVar(&opts.dirCalcOnly, "dircalcsonly", false, "Skip the walk phase, only run the rollup driver")
	f.BoolVarP(&opts.optimizeIndex, "optimizeindex", "O", false, "Force-merge down to a single segment on completion")
	f.StringVar(&opts.replaceFrom, "replacepath-from", "", "Replace this path prefix before indexing")
	f.StringVar(&opts.replaceTo, "replacepath-to", "", "...with this path prefix")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log errors")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")
	f.BoolVar(&opts.debug, "debug", false, "Log at trace level with caller info")

	_ = cmd.MarkFlagRequired("rootdir")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}

func runCrawl(ctx context.Context, opts *crawlOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Elasticsearch.IndexName = opts.indexName
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(os.Stderr, verbosityFrom(opts))

	if err := config.VerifyAuthToken(ctx, cfg.Auth.VerifyURL, cfg.Timeouts.RequestTimeout); err != nil {
		return err
	}

	minSize, err := parseSize(opts.minSizeStr)
	if err != nil {
		return fmt.Errorf("invalid --min-size: %w", err)
	}

	rc, err := runtime.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	args := model.RunArgs{
		RootDir:           opts.rootDir,
		MtimeDays:         opts.mtimeDays,
		MinSizeBytes:      minSize,
		IndexEmptyDirs:    opts.indexEmptyDirs,
		MaxDepth:          opts.maxDepth,
		MaxDirCalcDepth:   opts.maxDirCalcDepth,
		BatchSize:         opts.batchSize,
		AdaptiveBatch:     opts.adaptiveBatch,
		WalkThreads:       opts.walkThreads,
		AutoTag:           opts.autoTag,
		SizeOnDisk:        opts.sizeOnDisk,
		BlockSize:         opts.blockSize,
		Reindex:           opts.reindex,
		ReindexRecursive:  opts.reindexRecursive,
		ForceDropExisting: opts.forceDropExisting,
		FindDupes:         opts.findDupes,
		CopyTagsIndex:     opts.copyTagsIndex,
		HotDirsIndex:      opts.hotDirsIndex,
		SplitFiles:        opts.splitFiles,
		SplitFilesNum:     opts.splitFilesNum,
		ChunkFiles:        opts.chunkFiles,
		ChunkFilesNum:     opts.chunkFilesNum,
		NoWait:            opts.noWait,
		CrawlAPI:          opts.crawlAPI,
		StorageAgentHosts: opts.storageAgentHosts,
		DirCalcOnly:       opts.dirCalcOnly,
		OptimizeIndex:     opts.optimizeIndex,
		ReplaceFrom:       opts.replaceFrom,
		ReplaceTo:         opts.replaceTo,
	}

	return crawl.Run(rc, args)
}

func verbosityFrom(opts *crawlOptions) logging.Verbosity {
	switch {
	case opts.debug:
		return logging.Debug
	case opts.verbose:
		return logging.Verbose
	case opts.quiet:
		return logging.Quiet
	default:
		return logging.Normal
	}
}
