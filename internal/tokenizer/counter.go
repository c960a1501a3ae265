package tokenizer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TokenCounter wraps a Tokenizer and provides parallel token counting across
// many content strings. It is safe for concurrent use.
type TokenCounter struct {
	tokenizer Tokenizer
}

// NewTokenCounter creates a new TokenCounter using the given Tokenizer.
// The provided Tokenizer must be safe for concurrent use from multiple
// goroutines; all built-in implementations satisfy this requirement.
func NewTokenCounter(t Tokenizer) *TokenCounter {
	return &TokenCounter{tokenizer: t}
}

// Count returns the tokenizer's count for a single content string.
func (c *TokenCounter) Count(content string) int {
	return c.tokenizer.Count(content)
}

// CountAll counts tokens for every string in contents in parallel and
// returns the per-item counts in the same order, plus the sum. Workers are
// bounded to runtime.NumCPU() concurrent goroutines. Parallelism here is an
// implementation optimization only: results are identical to serial
// execution, per the core's concurrency model.
func (c *TokenCounter) CountAll(ctx context.Context, contents []string) ([]int, int, error) {
	counts := make([]int, len(contents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, content := range contents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("token counting cancelled: %w", err)
			}
			counts[i] = c.tokenizer.Count(content)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return counts, total, nil
}

// EstimateOverhead estimates the token overhead introduced by the envelope
// structure itself: the summary block and per-file tag overhead. This is
// reported separately from content tokens and is never charged against the
// configured ceiling, per the core's invariant that envelope and summary
// tokens are not counted.
//
// Formula: overhead = 40 + (fileCount * 12)
func (c *TokenCounter) EstimateOverhead(fileCount int) int {
	return 40 + (fileCount * 12)
}
