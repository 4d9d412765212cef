package dirreader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fstree/crawld/internal/model"
)

// HTTPAPI lists directories via a remote "crawl-API" HTTP backend — one of
// the three substitutable backends behind Reader (spec.md §9's "duck-typed
// backends → one interface"). The server side is an external collaborator,
// specified only by this request/response shape.
type HTTPAPI struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAPI returns a Reader that lists directories by calling
// baseURL+"/listdir?path=...".
func NewHTTPAPI(baseURL string, timeout time.Duration) *HTTPAPI {
	return &HTTPAPI{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type httpListResponse struct {
	CanonicalPath string   `json:"canonical_path"`
	Dirs          []string `json:"dirs"`
	Files         []struct {
		Name    string    `json:"name"`
		Size    int64     `json:"size"`
		ModTime time.Time `json:"mtime"`
	} `json:"files"`
}

// Listdir implements Reader.
func (h *HTTPAPI) Listdir(path string) (string, []string, []model.FileEntry, error) {
	u := h.baseURL + "/listdir?path=" + url.QueryEscape(path)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, nil)
	if err != nil {
		return path, nil, nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return path, nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		return path, nil, nil, &ErrSkip{Path: path, Err: fmt.Errorf("crawl-api returned %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return path, nil, nil, fmt.Errorf("crawl-api returned %d for %s", resp.StatusCode, path)
	}

	var body httpListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return path, nil, nil, err
	}

	files := make([]model.FileEntry, 0, len(body.Files))
	for _, f := range body.Files {
		files = append(files, model.FileEntry{Name: f.Name, Size: f.Size, ModTime: f.ModTime})
	}
	return body.CanonicalPath, body.Dirs, files, nil
}
