package config

import (
	"fmt"
	"strings"

	"github.com/fstree/crawld/internal/errkind"
)

// indexPrefix is the mandatory index-name prefix (spec.md §3 invariant 5).
const indexPrefix = "diskover-"

// Validate checks fields that can only be judged once the config and run
// args are both known. ValidateIndexName alone covers the invariant that
// must hold regardless of run args.
func (c *CrawlConfig) Validate() error {
	return ValidateIndexName(c.Elasticsearch.IndexName)
}

// ValidateIndexName enforces spec.md §3 invariant 5: the index name must
// match diskover-* and must never be the literal string "diskover".
func ValidateIndexName(name string) error {
	if name == "diskover" {
		return errkind.New(errkind.ConfigInvalid, fmt.Errorf("index name must not be the literal %q", "diskover"))
	}
	if !strings.HasPrefix(name, indexPrefix) {
		return errkind.New(errkind.ConfigInvalid, fmt.Errorf("index name %q must match %s*", name, indexPrefix))
	}
	return nil
}
