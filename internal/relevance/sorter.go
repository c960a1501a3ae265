// Package relevance - this file implements the allocator's sort order:
// descending score (primary key), then ascending byte-wise path (secondary
// key). The sort is stable and deterministic, per the core's ordering
// guarantees.
package relevance

import (
	"cmp"
	"slices"

	"github.com/condense-dev/condense/internal/pipeline"
)

// SortByPriority returns a new slice of ScoredCandidate sorted by descending
// Priority (primary key) and then ascending byte-wise Path (secondary key).
// The input slice is never mutated. The sort is stable: candidates that
// share identical Priority and Path values retain their original relative
// order -- which cannot happen for distinct files, since paths are unique,
// but matters for reproducibility of the sort itself.
func SortByPriority(candidates []pipeline.ScoredCandidate) []pipeline.ScoredCandidate {
	out := make([]pipeline.ScoredCandidate, len(candidates))
	copy(out, candidates)

	slices.SortStableFunc(out, func(a, b pipeline.ScoredCandidate) int {
		if n := cmp.Compare(b.Priority, a.Priority); n != 0 {
			return n
		}
		return cmp.Compare(a.Path, b.Path)
	})

	return out
}

// SortByPath returns a new slice of candidates sorted by ascending byte-wise
// path, used when no token ceiling is configured (the allocator is bypassed
// entirely and every included candidate is emitted in plain path order).
func SortByPath(candidates []pipeline.Candidate) []pipeline.Candidate {
	out := make([]pipeline.Candidate, len(candidates))
	copy(out, candidates)

	slices.SortStableFunc(out, func(a, b pipeline.Candidate) int {
		return cmp.Compare(a.Path, b.Path)
	})

	return out
}

// ScoreAll scores every candidate using the Priority Scorer's rule table and
// the full-match matcher, returning the resulting ScoredCandidate slice in
// the same order as the input.
func ScoreAll(candidates []pipeline.Candidate, fullMatch *FullMatchMatcher) []pipeline.ScoredCandidate {
	out := make([]pipeline.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		score, rule := Score(c.Path, c.Depth)
		out[i] = pipeline.ScoredCandidate{
			Candidate:   c,
			Priority:    score,
			MatchedRule: rule,
		}
		if fullMatch != nil {
			out[i].FullMatch = fullMatch.Match(c.Path)
		}
	}
	return out
}
