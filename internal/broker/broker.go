// Package broker wraps the three named job queues (general, crawl, rollup)
// that the dispatcher produces onto and an external worker pool consumes
// from (spec.md §6.2). The dispatcher never reads payloads back; it only
// enqueues and asks about queue depth and worker busy-state.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Queue names the three broker lists the dispatcher/worker pool agree on.
type Queue string

const (
	General Queue = "general"
	Crawl   Queue = "crawl"
	Rollup  Queue = "rollup"
)

// startedRegistryKey is the set workers add a job ID to when they begin
// processing it and remove it from on completion, so the dispatcher can
// tell "queue empty" apart from "queue empty but a job is still running".
const startedRegistryKey = "crawld:started"

// workerStateKey is the hash of worker name -> "busy"/"idle" workers
// update as they pick up and finish jobs.
const workerStateKey = "crawld:worker_state"

// Broker enqueues job payloads and answers the queue-depth/busy-state
// questions the dispatcher's drain barriers depend on.
type Broker struct {
	rdb *redis.Client
}

// New wraps an already-constructed redis client.
func New(rdb *redis.Client) *Broker {
	return &Broker{rdb: rdb}
}

// Enqueue JSON-encodes payload and pushes it onto the named queue.
func (b *Broker) Enqueue(ctx context.Context, q Queue, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s job: %w", q, err)
	}
	if err := b.rdb.RPush(ctx, string(q), data).Err(); err != nil {
		return fmt.Errorf("enqueue %s job: %w", q, err)
	}
	return nil
}

// QueueLen reports how many payloads are waiting (not yet popped) on q.
func (b *Broker) QueueLen(ctx context.Context, q Queue) (int64, error) {
	return b.rdb.LLen(ctx, string(q)).Result()
}

// WorkersBusy implements spec.md §4.9's gate: any worker reporting busy, or
// any of the given queues non-empty, or the started-job registry
// non-empty, means the pipeline has not drained yet.
func (b *Broker) WorkersBusy(ctx context.Context, queues ...Queue) (bool, error) {
	for _, q := range queues {
		n, err := b.QueueLen(ctx, q)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}

	started, err := b.rdb.SCard(ctx, startedRegistryKey).Result()
	if err != nil {
		return false, err
	}
	if started > 0 {
		return true, nil
	}

	states, err := b.rdb.HVals(ctx, workerStateKey).Result()
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if s == "busy" {
			return true, nil
		}
	}
	return false, nil
}
