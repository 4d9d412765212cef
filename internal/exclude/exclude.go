// Package exclude implements the path exclusion filter (C2): a pure
// function from path to a skip/keep decision, evaluated against include and
// exclude sets with first-match-wins semantics (spec.md §4.2).
package exclude

import (
	"path/filepath"
	"regexp"
	"strings"
)

// dotGlob is the special exclude-set token that skips every dotfile/dotdir.
const dotGlob = ".*"

// Filter decides whether a path should be skipped, applying the four rules
// of spec.md §4.2 in order. A Filter is immutable after New and safe for
// concurrent use by every walker goroutine.
type Filter struct {
	includeDirs  set
	includeFiles set
	excludeDirs  []string
	excludeFiles []string
}

type set map[string]struct{}

func newSet(items []string) set {
	s := make(set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// New builds a Filter from the configured include/exclude sets.
// includeDirs/excludeDirs apply to directory paths, includeFiles/excludeFiles
// to file paths — both consulted against basename and full path alike.
func New(includeDirs, excludeDirs, includeFiles, excludeFiles []string) *Filter {
	return &Filter{
		includeDirs:  newSet(includeDirs),
		includeFiles: newSet(includeFiles),
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
	}
}

// SkipDir reports whether a directory at path should not be descended into.
func (f *Filter) SkipDir(path string) bool {
	return skip(path, f.includeDirs, f.excludeDirs)
}

// SkipFile reports whether a file at path should be excluded from the crawl.
func (f *Filter) SkipFile(path string) bool {
	return skip(path, f.includeFiles, f.excludeFiles)
}

func skip(path string, include set, excludePatterns []string) bool {
	base := filepath.Base(path)

	// Rule 1: include set beats everything.
	if _, ok := include[base]; ok {
		return false
	}
	if _, ok := include[path]; ok {
		return false
	}

	// Rule 2: literal exclude match.
	for _, p := range excludePatterns {
		if p == dotGlob {
			continue
		}
		if !isWildcard(p) && (p == base || p == path) {
			return true
		}
	}

	// Rule 3: dotfile/dotdir token.
	if strings.HasPrefix(base, ".") {
		for _, p := range excludePatterns {
			if p == dotGlob {
				return true
			}
		}
	}

	// Rule 4: wildcard patterns, in listed order, basename then path.
	for _, p := range excludePatterns {
		if p == dotGlob || !isWildcard(p) {
			continue
		}
		if matchWildcard(p, base) || matchWildcard(p, path) {
			return true
		}
	}

	return false
}

func isWildcard(p string) bool {
	return strings.Contains(p, "*")
}

// matchWildcard implements the *X*/  *X / X* pattern forms of spec.md §4.2.
// A pattern with '*' only in the middle falls through to exact equality,
// matching the "otherwise" branch. A lone '*' takes the suffix branch with
// an empty suffix and so matches every candidate.
func matchWildcard(pattern, candidate string) bool {
	hasPrefix := strings.HasPrefix(pattern, "*")
	hasSuffix := strings.HasSuffix(pattern, "*")

	switch {
	case hasPrefix && hasSuffix && len(pattern) >= 2:
		// *X* -> substring match
		inner := pattern[1 : len(pattern)-1]
		if inner == "" {
			return true
		}
		re, err := regexp.Compile(regexp.QuoteMeta(inner))
		if err != nil {
			return false
		}
		return re.MatchString(candidate)
	case hasPrefix:
		// *X -> suffix match
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(candidate, suffix)
	case hasSuffix:
		// X* -> prefix match
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(candidate, prefix)
	default:
		return pattern == candidate
	}
}
