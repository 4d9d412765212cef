package scroller

import (
	"encoding/json"
	"testing"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parent, name, want string
	}{
		{"", "home", "/home"},
		{"/", "home", "/home"},
		{"/data", "files", "/data/files"},
	}
	for _, tt := range tests {
		if got := joinPath(tt.parent, tt.name); got != tt.want {
			t.Errorf("joinPath(%q, %q) = %q, want %q", tt.parent, tt.name, got, tt.want)
		}
	}
}

func TestDepthRegex(t *testing.T) {
	tests := []struct {
		rootDepth, maxDepth int
		want                string
	}{
		{2, 3, `(/[^/]+){1,4}|/?`},
		{0, 1, `(/[^/]+){1,0}|/?`},
		{0, 0, `(/[^/]+){1,0}|/?`}, // n clamped to 0, never negative
	}
	for _, tt := range tests {
		if got := depthRegex(tt.rootDepth, tt.maxDepth); got != tt.want {
			t.Errorf("depthRegex(%d, %d) = %q, want %q", tt.rootDepth, tt.maxDepth, got, tt.want)
		}
	}
}

func TestBuildQueryBodyQueryStringTakesPrecedence(t *testing.T) {
	s := &Scroller{}
	body := s.buildQueryBody(Query{QueryString: "path_parent:/data", PathParent: "/other"})

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal query body: %v", err)
	}
	boolQuery := parsed["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]any)
	if len(must) != 2 {
		t.Fatalf("got %d must clauses, want 2 (query_string + term)", len(must))
	}
	if _, ok := must[0].(map[string]any)["query_string"]; !ok {
		t.Errorf("first must clause = %v, want query_string", must[0])
	}
}

func TestBuildQueryBodyMatchAllWhenUnscoped(t *testing.T) {
	s := &Scroller{}
	body := s.buildQueryBody(Query{})

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal query body: %v", err)
	}
	if _, ok := parsed["query"].(map[string]any)["match_all"]; !ok {
		t.Errorf("query = %v, want match_all", parsed["query"])
	}
	if _, ok := parsed["sort"]; ok {
		t.Error("sort present in body, want absent when Descending is false")
	}
}

func TestBuildQueryBodyDescendingSort(t *testing.T) {
	s := &Scroller{}
	body := s.buildQueryBody(Query{Descending: true, DocType: "directory"})

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal query body: %v", err)
	}
	sort, ok := parsed["sort"].([]any)
	if !ok || len(sort) != 1 {
		t.Fatalf("sort = %v, want one path_parent desc clause", parsed["sort"])
	}
	entry := sort[0].(map[string]any)
	if entry["path_parent"] != "desc" {
		t.Errorf("sort clause = %v, want path_parent: desc", entry)
	}
}
