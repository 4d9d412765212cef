// Package runtime bundles the handful of process-lifetime collaborators
// every component needs — search client, broker client, logger, config,
// cancellation — into one value passed explicitly instead of reached for
// as package globals.
package runtime

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fstree/crawld/internal/config"
	"github.com/fstree/crawld/internal/esclient"
)

// Context carries the shared collaborators for one crawld invocation.
type Context struct {
	Ctx    context.Context
	Cfg    *config.CrawlConfig
	ES     *esclient.Client
	Broker *redis.Client
	Logger zerolog.Logger
}

// New wires a Context from a resolved config and an already-cancellable
// root context (cmd/crawld installs the SIGINT handler on it).
func New(ctx context.Context, cfg *config.CrawlConfig, logger zerolog.Logger) (*Context, error) {
	es, err := esclient.New(cfg.Elasticsearch)
	if err != nil {
		return nil, err
	}

	broker := redis.NewClient(&redis.Options{
		Addr:     cfg.Broker.Addr,
		Password: cfg.Broker.Password,
		DB:       cfg.Broker.DB,
	})

	return &Context{Ctx: ctx, Cfg: cfg, ES: es, Broker: broker, Logger: logger}, nil
}

// Close releases the broker connection pool. The search client has no
// persistent connections to release.
func (c *Context) Close() error {
	return c.Broker.Close()
}
