package config

import "time"

// Default returns a CrawlConfig populated with the built-in defaults listed
// in spec.md §6.4 and §4.4-4.5. Callers receive a fresh copy; mutating the
// result does not affect later calls.
func Default() *CrawlConfig {
	return &CrawlConfig{
		Excludes: ExcludesConfig{
			ExcludeDirs: []string{".*"},
		},
		Ownership: OwnershipConfig{Display: "name"},
		Batch: BatchConfig{
			StartSize:             50,
			MaxSize:               1000,
			StepSize:              50,
			AdaptiveBatchMaxFiles: 5000,
			AdaptiveBatchMaxSize:  1000,
		},
		Elasticsearch: ElasticsearchConfig{
			Hosts:                  []string{"http://localhost:9200"},
			NumberOfShards:         5,
			NumberOfReplicas:       1,
			RefreshInterval:        "30s",
			TranslogFlushThreshold: "1gb",
			ScrollSize:             500,
			ScrollTimeout:          "5m",
		},
		Broker: BrokerConfig{
			Addr: "localhost:6379",
		},
		Timeouts: TimeoutsConfig{
			RequestTimeout: 30 * time.Second,
			BulkChunkSize:  500,
			PollInterval:   1 * time.Second,
			QuiesceDelay:   500 * time.Millisecond,
		},
	}
}
