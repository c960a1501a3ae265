package relevance

import (
	"github.com/bmatcuk/doublestar/v4"
)

// FullMatchMatcher tests candidate paths and basenames against a set of user-supplied
// globs. A match forces a candidate to full content when compression mode is
// active, per the configuration surface's "full-match globs" option.
//
// Construct once via NewFullMatchMatcher and reuse for all candidates;
// pattern validation happens at construction time so per-file matching is
// allocation-free.
type FullMatchMatcher struct {
	patterns []string // only syntactically valid patterns are kept
}

// NewFullMatchMatcher constructs a FullMatchMatcher from the supplied globs.
// Patterns that fail doublestar.ValidatePattern are silently discarded. Pass
// nil or an empty slice to get a matcher that matches nothing.
func NewFullMatchMatcher(globs []string) *FullMatchMatcher {
	valid := make([]string, 0, len(globs))
	for _, p := range globs {
		if doublestar.ValidatePattern(p) {
			valid = append(valid, p)
		}
	}
	return &FullMatchMatcher{patterns: valid}
}

// Match reports whether relPath, or its basename alone, matches any
// configured glob.
func (m *FullMatchMatcher) Match(relPath string) bool {
	normalized := normalisePath(relPath)
	for _, pattern := range m.patterns {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
		// Also allow the glob to match against the basename alone, so a bare
		// pattern like "*.lock" behaves intuitively regardless of directory.
		if matched, err := doublestar.Match(pattern, base(normalized)); err == nil && matched {
			return true
		}
	}
	return false
}

// base returns the final "/"-delimited component of p.
func base(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
