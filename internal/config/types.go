// Package config parses and validates CrawlConfig, the single immutable
// record that replaces the source system's loose configuration dict
// (Design Notes §9). Fields are grouped by the same named sections as the
// config file's top-level tables.
package config

import "time"

// CrawlConfig is the process-lifetime configuration. It is built once at
// startup by Load and never mutated afterward.
type CrawlConfig struct {
	Excludes      ExcludesConfig      `toml:"excludes"`
	Ownership     OwnershipConfig     `toml:"ownership"`
	Batch         BatchConfig         `toml:"batch"`
	Elasticsearch ElasticsearchConfig `toml:"elasticsearch"`
	Broker        BrokerConfig        `toml:"broker"`
	Timeouts      TimeoutsConfig      `toml:"timeouts"`
	Tuning        TuningConfig        `toml:"tuning"`
	AutoTag       AutoTagConfig       `toml:"autotag"`
	Auth          AuthConfig          `toml:"auth"`
}

// ExcludesConfig holds the exclusion/inclusion sets consulted by the
// exclusion filter (C2).
type ExcludesConfig struct {
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
	IncludeDirs  []string `toml:"include_dirs"`
	IncludeFiles []string `toml:"include_files"`
}

// OwnershipConfig controls how owner/group are rendered on directory and
// file docs (by uid/gid, resolved name, or omitted).
type OwnershipConfig struct {
	Display string `toml:"display"` // "id", "name", or "none"
}

// BatchConfig holds the batching knobs consumed by the batch dispatcher
// (C4) and rollup driver (C8), including the fixed open question from
// spec.md §9: adaptivebatch_maxsize is always the field written, with no
// silent fallback to a differently-named key.
type BatchConfig struct {
	StartSize             int `toml:"start_size"`
	MaxSize               int `toml:"max_size"`
	StepSize              int `toml:"step_size"`
	AdaptiveBatchMaxFiles int `toml:"adaptivebatch_maxfiles"`
	AdaptiveBatchMaxSize  int `toml:"adaptivebatch_maxsize"`
}

// ElasticsearchConfig carries the search-engine endpoints and index tuning
// values applied at create time and crawl time (C5).
type ElasticsearchConfig struct {
	Hosts                  []string `toml:"hosts"`
	IndexName              string   `toml:"index_name"`
	NumberOfShards         int      `toml:"number_of_shards"`
	NumberOfReplicas       int      `toml:"number_of_replicas"`
	RefreshInterval        string   `toml:"refresh_interval"`
	TranslogFlushThreshold string   `toml:"translog_flush_threshold_size"`
	DisableReplicas        bool     `toml:"disable_replicas"`
	ScrollSize             int      `toml:"scroll_size"`
	ScrollTimeout          string   `toml:"scroll_timeout"`
	WaitForYellow          bool     `toml:"wait_for_yellow"`
}

// BrokerConfig carries the job broker endpoint.
type BrokerConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// TimeoutsConfig carries the process-wide timeout values.
type TimeoutsConfig struct {
	RequestTimeout time.Duration `toml:"request_timeout"`
	BulkChunkSize  int           `toml:"bulk_chunk_size"`
	PollInterval   time.Duration `toml:"poll_interval"`
	QuiesceDelay   time.Duration `toml:"quiesce_delay"`
}

// TuningConfig holds the optimize_index option. The crawl takes its
// force-merge choice from the -O flag (RunArgs.OptimizeIndex) and does not
// read this field.
type TuningConfig struct {
	OptimizeIndex bool `toml:"optimize_index"`
}

// AutoTagConfig holds pattern → tag rules applied by workers (payload-only
// here; the dispatcher just forwards the rules unchanged).
type AutoTagConfig struct {
	Rules map[string]string `toml:"rules"`
}

// AuthConfig holds the remote token-verification endpoint consulted at
// startup against the AUTH_TOKEN environment variable.
type AuthConfig struct {
	VerifyURL string `toml:"verify_url"`
}
