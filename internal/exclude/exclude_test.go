package exclude

import "testing"

func TestSkipDirWildcardExclude(t *testing.T) {
	f := New(nil, []string{"*modules*", ".*"}, nil, nil)

	cases := map[string]bool{
		"/t/node_modules": true,
		"/t/.git":         true,
		"/t/src":          false,
	}
	for path, want := range cases {
		if got := f.SkipDir(path); got != want {
			t.Errorf("SkipDir(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIncludeBeatsExclude(t *testing.T) {
	f := New(nil, []string{"node_modules"}, nil, nil)
	if f.SkipDir("/t/node_modules") != true {
		t.Fatal("expected exclude to skip without include")
	}

	f = New([]string{"node_modules"}, []string{"node_modules"}, nil, nil)
	if f.SkipDir("/t/node_modules") != false {
		t.Error("include set should win over an identical exclude entry")
	}
}

func TestLiteralBeatsWildcardOnFirstMatch(t *testing.T) {
	// "src" is a literal exclude entry; a wildcard elsewhere in the set
	// must not override the literal rule's priority (rule 2 before rule 4).
	f := New(nil, []string{"src", "*rc*"}, nil, nil)
	if !f.SkipDir("/t/src") {
		t.Error("expected literal exclude match to skip")
	}
}

func TestPrefixSuffixSubstringWildcards(t *testing.T) {
	f := New(nil, []string{"tmp*", "*.log", "*cache*"}, nil, nil)

	cases := map[string]bool{
		"/t/tmpdir":     true, // prefix
		"/t/error.log":  true, // suffix
		"/t/pycache123": true, // substring
		"/t/keep":       false,
	}
	for path, want := range cases {
		if got := f.SkipDir(path); got != want {
			t.Errorf("SkipDir(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestSkipFileExactMatch(t *testing.T) {
	f := New(nil, nil, nil, []string{"Thumbs.db"})
	if !f.SkipFile("/t/sub/Thumbs.db") {
		t.Error("expected exact basename match to skip")
	}
	if f.SkipFile("/t/sub/thumbs.db") {
		t.Error("matching is case-sensitive")
	}
}
