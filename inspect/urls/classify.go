package urls

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"doc-inspector/config"
)

var canaryPatterns = compileCanaryPatterns()

func compileCanaryPatterns() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(config.CanaryPatterns))
	for _, p := range config.CanaryPatterns {
		res = append(res, regexp.MustCompile(`(?i)`+p))
	}
	return res
}

// Trim strips trailing punctuation that scanners commonly pick up after a URL.
func Trim(raw string) string {
	return strings.TrimRight(raw, config.TrailingURLJunk)
}

// host returns the host-bearing portion of u. When u does not parse, the
// trimmed string itself is returned.
func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Hostname()
}

// IsCanary reports whether the URL points at a known canary or callback host.
func IsCanary(raw string) bool {
	h := host(Trim(raw))
	for _, re := range canaryPatterns {
		if re.MatchString(h) {
			return true
		}
	}
	return false
}

// Classify returns the sorted subset of candidates flagged by IsCanary.
func Classify(candidates []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if seen[c] || !IsCanary(c) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Annotate returns the listing labels for a URL: known vendors first, then
// the canary label.
func Annotate(raw string) []string {
	lower := strings.ToLower(raw)
	var labels []string
	for _, v := range config.VendorLabels {
		if strings.Contains(lower, v.Needle) {
			labels = append(labels, v.Label)
		}
	}
	if strings.Contains(lower, "canary") || IsCanary(raw) {
		labels = append(labels, config.CanaryLabel)
	}
	return labels
}

// Ignored reports whether a URL is an XML namespace reference that listings skip.
func Ignored(raw string) bool {
	lower := strings.ToLower(raw)
	for _, h := range config.IgnoredURLHosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}
