// Package allocator implements the Budget Allocator: a deterministic
// two-pass greedy packer that orders candidates and fits them into a hard
// token ceiling, retrying compression on overflow for everything outside the
// full-match group.
package allocator

import (
	"github.com/condense-dev/condense/internal/compressor"
	"github.com/condense-dev/condense/internal/pipeline"
	"github.com/condense-dev/condense/internal/relevance"
	"github.com/condense-dev/condense/internal/tokenizer"
)

// ExclusionBudget is the reason recorded for a candidate the allocator could
// not fit within the configured ceiling.
const ExclusionBudget = "budget"

// Options configures a single allocation run.
type Options struct {
	// Ceiling is the hard token ceiling C. A value of 0 legally excludes
	// every candidate.
	Ceiling int

	// CompressionActive activates the compress-on-overflow retry in the
	// second pass. When false, over-budget candidates in "rest" are excluded
	// immediately without a compression attempt.
	CompressionActive bool

	// Estimate computes the estimated token count for a file's content and
	// extension. Defaults to tokenizer.Estimate when nil.
	Estimate func(content string, ext string) int
}

// Allocate runs the Budget Allocator's exact algorithm over scored
// candidates and returns the ordered, per-candidate decisions: the full-match
// group first (in its own sort order), followed by the rest group (in its
// own sort order), matching the emitter's required output order.
func Allocate(candidates []pipeline.ScoredCandidate, dispatcher *compressor.Dispatcher, opts Options) []pipeline.AllocatedCandidate {
	estimate := opts.Estimate
	if estimate == nil {
		estimate = tokenizer.Estimate
	}

	fullMatchSet := make([]pipeline.ScoredCandidate, 0)
	rest := make([]pipeline.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FullMatch {
			fullMatchSet = append(fullMatchSet, c)
		} else {
			rest = append(rest, c)
		}
	}

	fullMatchSet = relevance.SortByPriority(fullMatchSet)
	rest = relevance.SortByPriority(rest)

	remaining := opts.Ceiling
	results := make([]pipeline.AllocatedCandidate, 0, len(candidates))

	// First pass: full-match set never retries as compressed.
	for _, c := range fullMatchSet {
		content := string(c.Content)
		t := estimate(content, c.Extension)
		if t <= remaining {
			results = append(results, pipeline.AllocatedCandidate{
				ScoredCandidate: c,
				Decision:        pipeline.DecisionFull,
				RenderedContent: content,
				TokenCount:      t,
			})
			remaining -= t
			continue
		}
		results = append(results, excluded(c, ExclusionBudget))
	}

	// Second pass: rest tries full, then compressed-on-overflow, then excludes.
	for _, c := range rest {
		content := string(c.Content)
		tFull := estimate(content, c.Extension)
		if tFull <= remaining {
			results = append(results, pipeline.AllocatedCandidate{
				ScoredCandidate: c,
				Decision:        pipeline.DecisionFull,
				RenderedContent: content,
				TokenCount:      tFull,
			})
			remaining -= tFull
			continue
		}

		if opts.CompressionActive && dispatcher != nil && dispatcher.SupportsExtension(c.Extension) {
			out := dispatcher.Compress(c.Path, c.Extension, c.Content)
			if out.Compressed {
				tCompressed := estimate(out.Text, c.Extension)
				if tCompressed <= remaining {
					results = append(results, pipeline.AllocatedCandidate{
						ScoredCandidate: c,
						Decision:        pipeline.DecisionCompressed,
						RenderedContent: out.Text,
						TokenCount:      tCompressed,
					})
					remaining -= tCompressed
					continue
				}
			}
		}

		results = append(results, excluded(c, ExclusionBudget))
	}

	return results
}

func excluded(c pipeline.ScoredCandidate, reason string) pipeline.AllocatedCandidate {
	return pipeline.AllocatedCandidate{
		ScoredCandidate: c,
		Decision:        pipeline.DecisionExcluded,
		ExclusionReason: reason,
	}
}
