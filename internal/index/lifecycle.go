// Package index implements the Index Lifecycle (C5): index creation with
// a fixed mapping, the exists/forcedrop/reindex/interactive-prompt branch,
// write-time tuning, and the restore-and-force-merge sequence run on
// completion (spec.md §4.5).
package index

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fstree/crawld/internal/errkind"
	"github.com/fstree/crawld/internal/esclient"
)

// Lifecycle drives index creation, write-time tuning and post-crawl
// restoration against one configured index.
type Lifecycle struct {
	client *esclient.Client
	extend ExtendMapping
}

// New builds a Lifecycle. extend may be nil (identity extension).
func New(client *esclient.Client, extend ExtendMapping) *Lifecycle {
	return &Lifecycle{client: client, extend: extend}
}

// exists reports whether the configured index is already present.
func (l *Lifecycle) exists(ctx context.Context) (bool, error) {
	req := esapi.IndicesExistsRequest{Index: []string{l.client.IndexName}}
	resp, err := req.Do(ctx, l.client.Raw)
	if err != nil {
		return false, errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == 200, nil
}

// EnsureCreated implements the exists/forcedrop/reindex/prompt branch.
// prompt is consulted only when the index exists and neither reindex nor
// forceDropExisting apply; pass os.Stdin in production.
func (l *Lifecycle) EnsureCreated(ctx context.Context, reindex, forceDropExisting bool, prompt io.Reader) error {
	exists, err := l.exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return l.create(ctx)
	}

	switch {
	case reindex:
		return nil // C6 (reindex deleter) takes over; index is kept as-is.
	case forceDropExisting:
		if err := l.drop(ctx); err != nil {
			return err
		}
		return l.create(ctx)
	default:
		ok, err := confirmPrompt(prompt, l.client.IndexName)
		if err != nil {
			return err
		}
		if !ok {
			return errkind.New(errkind.IndexExistsDeclined,
				fmt.Errorf("index %q already exists", l.client.IndexName))
		}
		if err := l.drop(ctx); err != nil {
			return err
		}
		return l.create(ctx)
	}
}

func confirmPrompt(r io.Reader, indexName string) (bool, error) {
	fmt.Printf("Index %q already exists. Delete and recreate? [y/N] ", indexName)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}

func (l *Lifecycle) create(ctx context.Context) error {
	var mapping map[string]any
	if err := json.Unmarshal([]byte(mappingJSON), &mapping); err != nil {
		return fmt.Errorf("parse base mapping: %w", err)
	}
	if l.extend != nil {
		mapping = l.extend(mapping)
	}
	if settings, ok := mapping["settings"]; !ok || settings == nil {
		mapping["settings"] = map[string]any{
			"number_of_shards":   l.client.ES.NumberOfShards,
			"number_of_replicas": l.client.ES.NumberOfReplicas,
		}
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{Index: l.client.IndexName, Body: strings.NewReader(string(body))}
	resp, err := req.Do(ctx, l.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() {
		return errkind.New(errkind.SearchEngineTimeout, fmt.Errorf("create index: %s", resp.Status()))
	}
	return nil
}

func (l *Lifecycle) drop(ctx context.Context) error {
	req := esapi.IndicesDeleteRequest{Index: []string{l.client.IndexName}}
	resp, err := req.Do(ctx, l.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() {
		return errkind.New(errkind.SearchEngineTimeout, fmt.Errorf("delete index: %s", resp.Status()))
	}
	return nil
}

// TuneForWrite applies the write-time settings overrides (spec.md §4.5):
// refresh_interval, number_of_replicas (0 when disableReplicas), and
// translog.flush_threshold_size.
func (l *Lifecycle) TuneForWrite(ctx context.Context) error {
	replicas := l.client.ES.NumberOfReplicas
	if l.client.ES.DisableReplicas {
		replicas = 0
	}
	return l.putSettings(ctx, map[string]any{
		"index": map[string]any{
			"refresh_interval":              l.client.ES.RefreshInterval,
			"number_of_replicas":            replicas,
			"translog.flush_threshold_size": l.client.ES.TranslogFlushThreshold,
		},
	})
}

// RestoreDefaults reverts the write-time overrides: refresh_interval back to
// 1s, number_of_replicas back to the configured count, and
// translog.flush_threshold_size reset (null) to the engine default.
func (l *Lifecycle) RestoreDefaults(ctx context.Context) error {
	return l.putSettings(ctx, map[string]any{
		"index": map[string]any{
			"refresh_interval":              "1s",
			"number_of_replicas":            l.client.ES.NumberOfReplicas,
			"translog.flush_threshold_size": nil,
		},
	})
}

func (l *Lifecycle) putSettings(ctx context.Context, settings map[string]any) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	req := esapi.IndicesPutSettingsRequest{
		Index: []string{l.client.IndexName},
		Body:  strings.NewReader(string(body)),
	}
	resp, err := req.Do(ctx, l.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() {
		return errkind.New(errkind.SearchEngineTimeout, fmt.Errorf("put settings: %s", resp.Status()))
	}
	return nil
}

// ForceMerge issues a force-merge, collapsing to one segment when
// optimizeIndex is set. The returned error is always errkind-wrapped as
// SearchEngineTimeout (non-fatal per spec.md §7) — callers should log it
// and continue rather than abort the run.
func (l *Lifecycle) ForceMerge(ctx context.Context, optimizeIndex bool) error {
	req := esapi.IndicesForcemergeRequest{Index: []string{l.client.IndexName}}
	if optimizeIndex {
		one := 1
		req.MaxNumSegments = &one
	}
	resp, err := req.Do(ctx, l.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() {
		return errkind.New(errkind.SearchEngineTimeout, fmt.Errorf("force-merge: %s", resp.Status()))
	}
	return nil
}
