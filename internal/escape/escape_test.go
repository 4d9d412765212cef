package escape

import (
	"strings"
	"testing"
)

// TestQueryStringEscapesEachSpecialChar asserts the round-trip property from
// spec.md §8: escaping a character preserves it — the escaped form is the
// original character prefixed by exactly one backslash.
func TestQueryStringEscapesEachSpecialChar(t *testing.T) {
	for _, c := range specialChars {
		got := QueryString(string(c))
		want := `\` + string(c)
		if got != want {
			t.Errorf("QueryString(%q) = %q, want %q", string(c), got, want)
		}
	}
}

func TestQueryStringPlainPath(t *testing.T) {
	got := QueryString("/mnt/data/project (final).docs")
	if !strings.Contains(got, `\/mnt\/data\/project`) {
		t.Errorf("expected escaped slashes, got %q", got)
	}
	if !strings.Contains(got, `\(final\)`) {
		t.Errorf("expected escaped parens, got %q", got)
	}
	if !strings.Contains(got, `\.docs`) {
		t.Errorf("expected escaped dot, got %q", got)
	}
}

func TestQueryStringBackslashNotDoubleEscaped(t *testing.T) {
	got := QueryString(`a\b`)
	if got != `a\\b` {
		t.Errorf("QueryString(a\\b) = %q, want %q", got, `a\\b`)
	}
}
