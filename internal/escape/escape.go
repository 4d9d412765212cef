// Package escape implements the search-engine query-string escaping rules
// from spec.md §6.3: the exact character set that must be backslash-escaped
// before a path is interpolated into a query_string query.
package escape

import "strings"

// specialChars is backslash first, then every other character requiring
// escape, in the order listed in §6.3. Order matters only in that backslash
// must be replaced before any of the characters it would otherwise double-
// escape.
var specialChars = []rune{
	'\\', '\n', '\t', '/', '(', ')', '[', ']', '$', ' ', '&', '<', '>',
	'+', '-', '|', '!', '{', '}', '^', '~', '?', ':', '=', '\'', '"',
	'@', '.', '#', '*',
	'　', // ideographic space
}

var replacer = newReplacer()

func newReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(specialChars)*2)
	for _, c := range specialChars {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}

// QueryString backslash-escapes every character in §6.3's set so s can be
// safely interpolated into a query_string query. Backslash is escaped
// first (via strings.Replacer's single left-to-right pass over the input,
// which never rescans replacement output), so a literal backslash in s
// never gets double-escaped by a later rule.
func QueryString(s string) string {
	return replacer.Replace(s)
}
