// Package reindexer implements the Reindex Deleter (C6): for a target path,
// captures the tags on existing file/directory docs into a
// ReindexCarryover, then bulk-deletes those docs so the upcoming re-crawl
// starts from a clean slate while still being able to restore tags
// (spec.md §4.6).
package reindexer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fstree/crawld/internal/bulkwriter"
	"github.com/fstree/crawld/internal/errkind"
	"github.com/fstree/crawld/internal/escape"
	"github.com/fstree/crawld/internal/esclient"
	"github.com/fstree/crawld/internal/model"
	"github.com/fstree/crawld/internal/scroller"
)

// Reindexer captures tag carryover and deletes existing docs under a path.
type Reindexer struct {
	client   *esclient.Client
	scroller *scroller.Scroller
}

// New builds a Reindexer bound to client's configured index.
func New(client *esclient.Client, s *scroller.Scroller) *Reindexer {
	return &Reindexer{client: client, scroller: s}
}

// Run captures ReindexCarryover for path P and deletes the matching file
// and directory docs, in that order. recursive selects between the
// "path_parent: P" and "path_parent: P OR path_parent: P/*" query shapes.
func (r *Reindexer) Run(ctx context.Context, path string, recursive bool) (*model.ReindexCarryover, error) {
	carryover := model.NewReindexCarryover()

	fileQuery := r.buildQuery(path, recursive, "file")
	fileTags, err := r.scroller.ScrollTags(ctx, fileQuery)
	if err != nil {
		return nil, err
	}
	for _, t := range fileTags {
		carryover.File[t.FullPath] = model.TagPair{Tag: joinTags(t.Tag), TagCustom: joinTags(t.TagCustom)}
	}
	if err := r.deleteByQuery(ctx, fileQuery); err != nil {
		return nil, err
	}

	dirQuery := r.buildQuery(path, recursive, "directory")
	dirTags, err := r.scroller.ScrollTags(ctx, dirQuery)
	if err != nil {
		return nil, err
	}
	for _, t := range dirTags {
		carryover.Directory[t.FullPath] = model.TagPair{Tag: joinTags(t.Tag), TagCustom: joinTags(t.TagCustom)}
	}
	if err := r.deleteByQuery(ctx, dirQuery); err != nil {
		return nil, err
	}

	return carryover, nil
}

// buildQuery escapes path and builds the non-recursive or recursive scope
// per spec.md §4.6: `path_parent: P` or `path_parent: P OR path_parent: P/*`.
// For directory docs the directory doc for P itself is OR-ed in, matched by
// filename = basename(P) AND path_parent = dirname(P).
func (r *Reindexer) buildQuery(path string, recursive bool, docType string) scroller.Query {
	escaped := escape.QueryString(path)

	queryString := fmt.Sprintf("path_parent:%s", escaped)
	if recursive {
		queryString = fmt.Sprintf("path_parent:%s OR path_parent:%s/*", escaped, escaped)
	}
	if docType == "directory" {
		escapedParent := escape.QueryString(filepath.Dir(path))
		escapedBase := escape.QueryString(filepath.Base(path))
		queryString = fmt.Sprintf("(%s) OR (filename:%s AND path_parent:%s)", queryString, escapedBase, escapedParent)
	}

	return scroller.Query{QueryString: queryString, DocType: docType}
}

func (r *Reindexer) deleteByQuery(ctx context.Context, q scroller.Query) error {
	ids, err := r.scroller.ScrollPathToID(ctx, q)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	docs := make([]bulkwriter.Doc, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, bulkwriter.Doc{ID: id, Index: r.client.IndexName, OpType: "delete"})
	}
	return r.bulkDelete(ctx, docs)
}

// bulkDelete issues delete actions directly rather than through
// bulkwriter.Bulk (which assumes index/update bodies) — deletes carry no
// document body.
func (r *Reindexer) bulkDelete(ctx context.Context, docs []bulkwriter.Doc) error {
	var body strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&body, `{"delete":{"_index":%q,"_id":%q}}`+"\n", d.Index, d.ID)
	}

	req := esapi.BulkRequest{Body: strings.NewReader(body.String())}
	resp, err := req.Do(ctx, r.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() {
		return errkind.New(errkind.SearchEngineTimeout, fmt.Errorf("bulk delete: %s", resp.Status()))
	}
	return nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}
