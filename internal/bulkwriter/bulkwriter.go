// Package bulkwriter implements the bulk document writer (C10): chunked
// bulk requests against the search index, with a version-conflict retry
// path that narrows to update-only entries, and an optional wait-for-yellow
// health gate before the first write (spec.md §4.10).
package bulkwriter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fstree/crawld/internal/errkind"
	"github.com/fstree/crawld/internal/esclient"
)

// OpType distinguishes a plain create/index entry from one that must only
// ever be retried as an update (spec.md's splitfiles version-conflict path).
type OpType string

const (
	OpIndex  OpType = "index"
	OpUpdate OpType = "update"
)

// Doc is one bulk entry: an index/update action plus its document body.
type Doc struct {
	ID     string
	Index  string
	OpType OpType
	Body   any
}

// Writer performs chunked bulk writes, retrying version conflicts against
// update-only entries when splitfiles is active.
type Writer struct {
	client     *esclient.Client
	chunkSize  int
	timeout    time.Duration
	splitFiles bool
	waitYellow bool
}

// New builds a Writer. chunkSize and timeout come from TimeoutsConfig.
func New(client *esclient.Client, chunkSize int, timeout time.Duration, splitFiles, waitForYellow bool) *Writer {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	return &Writer{client: client, chunkSize: chunkSize, timeout: timeout, splitFiles: splitFiles, waitYellow: waitForYellow}
}

// WaitForYellow blocks until the cluster reaches at least yellow health, if
// configured to do so; otherwise it is a no-op.
func (w *Writer) WaitForYellow(ctx context.Context) error {
	if !w.waitYellow {
		return nil
	}
	req := esapi.ClusterHealthRequest{WaitForStatus: "yellow"}
	resp, err := req.Do(ctx, w.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.IsError() {
		return errkind.New(errkind.SearchEngineTimeout, fmt.Errorf("cluster health: %s", resp.Status()))
	}
	return nil
}

// Bulk writes docs in chunkSize-sized batches, retrying any version
// conflicts that occurred on update-tagged entries.
func (w *Writer) Bulk(ctx context.Context, docs []Doc) error {
	for start := 0; start < len(docs); start += w.chunkSize {
		end := min(start+w.chunkSize, len(docs))
		if err := w.bulkChunk(ctx, docs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) bulkChunk(ctx context.Context, chunk []Doc) error {
	body, err := encodeBulkBody(chunk)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req := esapi.BulkRequest{Body: bytes.NewReader(body)}
	resp, err := req.Do(reqCtx, w.client.Raw)
	if err != nil {
		return errkind.New(errkind.SearchEngineTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}

	if !parsed.Errors {
		return nil
	}

	conflicts := conflictedEntries(chunk, parsed)
	if len(conflicts) == 0 {
		return errkind.New(errkind.BulkVersionConflict, fmt.Errorf("bulk write reported non-conflict errors"))
	}
	if !w.splitFiles {
		return errkind.New(errkind.BulkVersionConflict, fmt.Errorf("%d version conflicts", len(conflicts)))
	}

	// Retry with only the update-tagged entries among the conflicted set;
	// plain index entries that conflicted are not retried (spec.md §4.10).
	var retry []Doc
	for _, c := range conflicts {
		if c.OpType == OpUpdate {
			retry = append(retry, c)
		}
	}
	if len(retry) == 0 {
		return nil
	}
	return w.bulkChunk(ctx, retry)
}

func conflictedEntries(chunk []Doc, resp bulkResponse) []Doc {
	var out []Doc
	for i, item := range resp.Items {
		if i >= len(chunk) {
			break
		}
		result := item.forOpType(chunk[i].OpType)
		if result != nil && result.Status == 409 {
			out = append(out, chunk[i])
		}
	}
	return out
}

type bulkResponse struct {
	Errors bool            `json:"errors"`
	Items  []bulkItemEntry `json:"items"`
}

type bulkItemEntry struct {
	Index  *bulkItemResult `json:"index,omitempty"`
	Update *bulkItemResult `json:"update,omitempty"`
	Create *bulkItemResult `json:"create,omitempty"`
}

func (e bulkItemEntry) forOpType(op OpType) *bulkItemResult {
	switch op {
	case OpUpdate:
		return e.Update
	default:
		return e.Index
	}
}

type bulkItemResult struct {
	Status int `json:"status"`
}

func encodeBulkBody(chunk []Doc) ([]byte, error) {
	var buf bytes.Buffer
	for _, d := range chunk {
		meta := map[string]any{"_index": d.Index}
		if d.ID != "" {
			meta["_id"] = d.ID
		}
		action := map[string]any{string(d.OpType): meta}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return nil, err
		}
		if d.OpType == OpUpdate {
			if err := json.NewEncoder(&buf).Encode(map[string]any{"doc": d.Body, "doc_as_upsert": true}); err != nil {
				return nil, err
			}
		} else {
			if err := json.NewEncoder(&buf).Encode(d.Body); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}
