package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fstree/crawld/internal/errkind"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:     "crawld",
		Short:   "Crawl a filesystem tree and index it for search",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newCrawlCmd(ctx))

	if err := root.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			// SIGINT/SIGTERM: print a message and exit 0 (spec.md §7).
			fmt.Fprintln(os.Stderr, "crawld: interrupted, exiting")
			return errkind.Interrupted.ExitCode()
		}
		return 1
	}
	return 0
}
