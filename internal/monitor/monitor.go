// Package monitor implements the progress/queue monitor (C9): the
// workers_busy poll loop the dispatcher blocks on at its three drain
// barriers (before enqueueing, skipped with --nowait; between crawl and
// rollup; before restoring index settings), spec.md §4.9.
package monitor

import (
	"context"
	"time"

	"github.com/fstree/crawld/internal/broker"
)

// DefaultPollInterval is used when a caller passes a zero interval.
const DefaultPollInterval = time.Second

// WaitForDrain blocks until broker.WorkersBusy reports false for the given
// queues, polling at interval. Returns early with ctx.Err() if ctx is
// cancelled (SIGINT) before the pipeline drains.
func WaitForDrain(ctx context.Context, b *broker.Broker, interval time.Duration, queues ...broker.Queue) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		busy, err := b.WorkersBusy(ctx, queues...)
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
