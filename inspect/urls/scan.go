// Package urls finds URL-shaped tokens in raw bytes and flags suspicious ones.
package urls

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var urlPattern = regexp.MustCompile(`https?://[^\s\v<>"']+`)

// Scan returns the distinct URL tokens found in data, in first-seen order.
// Invalid UTF-8 inside a match is replaced rather than rejected.
func Scan(data []byte) []string {
	matches := urlPattern.FindAll(data, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		s := decodeLossy(m)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// decodeLossy decodes b as UTF-8, replacing each invalid byte with U+FFFD.
func decodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// Set accumulates distinct URLs.
type Set map[string]struct{}

// Add inserts every url.
func (s Set) Add(urls ...string) {
	for _, u := range urls {
		if u != "" {
			s[u] = struct{}{}
		}
	}
}

// Sorted returns the members in lexical order. An empty set yields nil.
func (s Set) Sorted() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
