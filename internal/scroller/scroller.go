// Package scroller implements the generic doc scroller (C7): one
// scan-with-scroll engine whose result shape depends on caller intent —
// rollup input, tag-copy, hot-dirs, or path→id lookup (spec.md §4.7).
package scroller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fstree/crawld/internal/errkind"
	"github.com/fstree/crawld/internal/esclient"
	"github.com/fstree/crawld/internal/model"
)

// Scroller drains matching docs out of one index via the scroll API.
type Scroller struct {
	client *esclient.Client
}

// New builds a Scroller bound to client's configured index and scroll
// tuning (scroll_size, scroll_timeout).
func New(client *esclient.Client) *Scroller {
	return &Scroller{client: client}
}

// Query scopes a scroll to a path and optionally a max walk depth, mirroring
// spec.md §4.7's "(id, full_path, mtime, doctype)" style of caller intent.
type Query struct {
	PathParent  string // exact path_parent match; empty means unscoped
	PathPrefix  string // path_parent prefix (recursive scope)
	QueryString string // raw, already-escaped Lucene query string (ANDed with the other clauses, listed first)
	MaxDepth    int    // 0 means unlimited; else root_depth + maxdepth - 1
	RootDepth   int
	Descending  bool // sort by path_parent, deepest first
	DocType     string
}

// depthRegex builds the "(/[^/]+){1,n}|/?" max-depth regex from spec.md
// §4.7, where n = rootDepth + maxDepth - 1.
func depthRegex(rootDepth, maxDepth int) string {
	n := rootDepth + maxDepth - 1
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf(`(/[^/]+){1,%d}|/?`, n)
}

// RollupEntry is C7's "rollup input" shape: (id, full_path, mtime, doctype).
type RollupEntry struct {
	ID       string
	FullPath string
	Mtime    string
	DocType  string
}

// TagEntry is C7's "tag copy" shape: (full_path, tag, tag_custom, doctype).
type TagEntry struct {
	FullPath  string
	Tag       []string
	TagCustom []string
	DocType   string
}

// HotDirEntry is C7's "hot-dirs" shape: (id, path, filesize, items, ...).
type HotDirEntry struct {
	ID           string
	Path         string
	FileSize     int64
	Items        int64
	ItemsFiles   int64
	ItemsSubdirs int64
}

// scrollHit is the subset of a search hit every shape is projected from.
type scrollHit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

type scrollResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []scrollHit `json:"hits"`
	} `json:"hits"`
}

// scrollAll drives the open-scroll/scroll-next/clear-scroll sequence and
// invokes project for every hit, in the order the engine returns them.
func (s *Scroller) scrollAll(ctx context.Context, q Query, project func(scrollHit) error) error {
	body := s.buildQueryBody(q)

	searchReq := esapi.SearchRequest{
		Index:  []string{s.client.IndexName},
		Body:   bytes.NewReader(body),
		Scroll: mustDuration(s.client.ES.ScrollTimeout),
		Size:   &s.client.ES.ScrollSize,
	}
	resp, err := searchReq.Do(ctx, s.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var page scrollResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return fmt.Errorf("decode scroll page: %w", err)
	}

	scrollID := page.ScrollID
	defer s.clearScroll(ctx, scrollID)

	for {
		for _, h := range page.Hits.Hits {
			if err := project(h); err != nil {
				return err
			}
		}
		if len(page.Hits.Hits) == 0 {
			return nil
		}

		nextReq := esapi.ScrollRequest{ScrollID: scrollID, Scroll: mustDuration(s.client.ES.ScrollTimeout)}
		nextResp, err := nextReq.Do(ctx, s.client.Raw)
		if err != nil {
			return errkind.New(errkind.SearchEngineTimeout, err)
		}
		decodeErr := json.NewDecoder(nextResp.Body).Decode(&page)
		_ = nextResp.Body.Close()
		if decodeErr != nil {
			return fmt.Errorf("decode scroll page: %w", decodeErr)
		}
		scrollID = page.ScrollID
		if len(page.Hits.Hits) == 0 {
			return nil
		}
	}
}

func (s *Scroller) clearScroll(ctx context.Context, scrollID string) {
	if scrollID == "" {
		return
	}
	req := esapi.ClearScrollRequest{ScrollID: []string{scrollID}}
	resp, err := req.Do(ctx, s.client.Raw)
	if err == nil {
		_ = resp.Body.Close()
	}
}

func (s *Scroller) buildQueryBody(q Query) []byte {
	var must []map[string]any

	if q.QueryString != "" {
		must = append(must, map[string]any{"query_string": map[string]any{"query": q.QueryString}})
	}

	switch {
	case q.PathParent != "":
		must = append(must, map[string]any{"term": map[string]any{"path_parent": q.PathParent}})
	case q.PathPrefix != "":
		must = append(must, map[string]any{"prefix": map[string]any{"path_parent": q.PathPrefix}})
	}
	if q.MaxDepth > 0 {
		must = append(must, map[string]any{
			"regexp": map[string]any{"path_parent": depthRegex(q.RootDepth, q.MaxDepth)},
		})
	}
	if q.DocType != "" {
		must = append(must, map[string]any{"term": map[string]any{"doctype": q.DocType}})
	}

	query := map[string]any{"match_all": map[string]any{}}
	if len(must) > 0 {
		query = map[string]any{"bool": map[string]any{"must": must}}
	}

	body := map[string]any{"query": query}
	if q.Descending {
		body["sort"] = []any{map[string]any{"path_parent": "desc"}}
	}

	data, _ := json.Marshal(body)
	return data
}

// ScrollRollupInput scrolls directory docs in the rollup shape, sorted
// deepest-first when q.Descending is set (required by C8 for bottom-up
// aggregation, spec.md §4.8).
func (s *Scroller) ScrollRollupInput(ctx context.Context, q Query) ([]RollupEntry, error) {
	var out []RollupEntry
	err := s.scrollAll(ctx, q, func(h scrollHit) error {
		var src struct {
			PathParent   string `json:"path_parent"`
			Filename     string `json:"filename"`
			LastModified string `json:"last_modified"`
		}
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return err
		}
		out = append(out, RollupEntry{
			ID:       h.ID,
			FullPath: joinPath(src.PathParent, src.Filename),
			Mtime:    src.LastModified,
			DocType:  "directory",
		})
		return nil
	})
	return out, err
}

// ScrollTags scrolls docs in the tag-copy shape, used by the reindex
// deleter to capture ReindexCarryover before deleting matching docs.
func (s *Scroller) ScrollTags(ctx context.Context, q Query) ([]TagEntry, error) {
	var out []TagEntry
	err := s.scrollAll(ctx, q, func(h scrollHit) error {
		var src struct {
			PathParent string   `json:"path_parent"`
			Filename   string   `json:"filename"`
			Tag        []string `json:"tag"`
			TagCustom  []string `json:"tag_custom"`
		}
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return err
		}
		out = append(out, TagEntry{
			FullPath:  joinPath(src.PathParent, src.Filename),
			Tag:       src.Tag,
			TagCustom: src.TagCustom,
			DocType:   q.DocType,
		})
		return nil
	})
	return out, err
}

// ScrollHotDirs scrolls directory docs in the hot-dirs shape.
func (s *Scroller) ScrollHotDirs(ctx context.Context, q Query) ([]HotDirEntry, error) {
	var out []HotDirEntry
	err := s.scrollAll(ctx, q, func(h scrollHit) error {
		var src model.DirectoryDoc
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return err
		}
		out = append(out, HotDirEntry{
			ID:           h.ID,
			Path:         joinPath(src.PathParent, src.Filename),
			FileSize:     src.FileSize,
			Items:        src.Items,
			ItemsFiles:   src.ItemsFiles,
			ItemsSubdirs: src.ItemsSubdirs,
		})
		return nil
	})
	return out, err
}

// ScrollPathToID scrolls docs into the path→id lookup shape, keyed by path
// relative to q.PathParent.
func (s *Scroller) ScrollPathToID(ctx context.Context, q Query) (map[string]string, error) {
	out := make(map[string]string)
	err := s.scrollAll(ctx, q, func(h scrollHit) error {
		var src struct {
			PathParent string `json:"path_parent"`
			Filename   string `json:"filename"`
		}
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return err
		}
		full := joinPath(src.PathParent, src.Filename)
		rel := strings.TrimPrefix(full, q.PathParent)
		out[rel] = h.ID
		return nil
	})
	return out, err
}

func joinPath(parent, name string) string {
	if parent == "" || parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// mustDuration returns s unchanged as an esapi duration string, or "5m"
// when s is empty. The value is not validated here or at config load; a
// malformed scroll_timeout surfaces as a search-engine error.
func mustDuration(s string) string {
	if s == "" {
		return "5m"
	}
	return s
}
