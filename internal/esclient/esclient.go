// Package esclient constructs the elastic/go-elasticsearch client from a
// resolved config. It exposes the raw client as Client.Raw together with
// the index name and search-engine settings; the bulkwriter, index,
// reindexer and scroller packages issue their own esapi requests on it.
package esclient

import (
	"github.com/elastic/go-elasticsearch/v8"

	"github.com/fstree/crawld/internal/config"
)

// Client wraps the raw elasticsearch.Client plus the settings every caller
// needs back (index name, scroll tuning) without re-reading CrawlConfig.
type Client struct {
	Raw       *elasticsearch.Client
	IndexName string
	ES        config.ElasticsearchConfig
}

// New builds a Client from the elasticsearch section of a CrawlConfig.
func New(cfg config.ElasticsearchConfig) (*Client, error) {
	raw, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Hosts,
	})
	if err != nil {
		return nil, err
	}
	return &Client{Raw: raw, IndexName: cfg.IndexName, ES: cfg}, nil
}
