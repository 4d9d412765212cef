package reindexer

import "testing"

func TestBuildQueryFile(t *testing.T) {
	r := &Reindexer{}

	q := r.buildQuery("/data/project", false, "file")
	want := `path_parent:\/data\/project`
	if q.QueryString != want {
		t.Errorf("non-recursive file query = %q, want %q", q.QueryString, want)
	}
	if q.DocType != "file" {
		t.Errorf("DocType = %q, want file", q.DocType)
	}

	q = r.buildQuery("/data/project", true, "file")
	want = `path_parent:\/data\/project OR path_parent:\/data\/project/*`
	if q.QueryString != want {
		t.Errorf("recursive file query = %q, want %q", q.QueryString, want)
	}
}

func TestBuildQueryDirectoryMatchesSelf(t *testing.T) {
	r := &Reindexer{}

	q := r.buildQuery("/data/project", false, "directory")
	want := `(path_parent:\/data\/project) OR (filename:project AND path_parent:\/data)`
	if q.QueryString != want {
		t.Errorf("directory query = %q, want %q", q.QueryString, want)
	}
}

func TestJoinTags(t *testing.T) {
	tests := []struct {
		tags []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b", "c"}, "a,b,c"},
	}
	for _, tt := range tests {
		if got := joinTags(tt.tags); got != tt.want {
			t.Errorf("joinTags(%v) = %q, want %q", tt.tags, got, tt.want)
		}
	}
}
