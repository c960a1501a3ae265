// Package composer implements the Pipeline Composer: it wires the
// discovery, scoring, allocation, compression, and emission stages into a
// single run, driven by the resolved flag values. It depends on every
// pipeline-stage package and on the shared internal/pipeline data types, so
// it lives outside internal/pipeline to avoid an import cycle.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/condense-dev/condense/internal/allocator"
	"github.com/condense-dev/condense/internal/compressor"
	"github.com/condense-dev/condense/internal/config"
	"github.com/condense-dev/condense/internal/discovery"
	"github.com/condense-dev/condense/internal/emitter"
	"github.com/condense-dev/condense/internal/pipeline"
	"github.com/condense-dev/condense/internal/relevance"
	"github.com/condense-dev/condense/internal/tokenizer"
)

// Run executes a single end-to-end pipeline pass: discovery, priority
// scoring, budget allocation (when a token ceiling is configured), optional
// compression, and emission to the configured output sink.
func Run(ctx context.Context, cfg *config.FlagValues) error {
	slog.Info("starting condense context generation",
		"dir", cfg.Dir,
		"output", cfg.Output,
		"format", cfg.Format,
	)
	slog.Debug("resolved configuration",
		"compress", cfg.Compress,
		"max_tokens", cfg.MaxTokens,
		"tokenizer", cfg.Tokenizer,
		"dry_run", cfg.DryRun,
		"stats", cfg.Stats,
	)

	discoveryResult, err := discoverCandidates(ctx, cfg)
	if err != nil {
		return pipeline.NewError("discovery failed", err)
	}

	if cfg.FailOnRedaction && discoveryResult.SkipReasons["secret"] > 0 {
		return pipeline.NewRedactionError(
			fmt.Sprintf("%d candidate(s) skipped as likely secrets", discoveryResult.SkipReasons["secret"]),
		)
	}

	fullMatch := relevance.NewFullMatchMatcher(cfg.FullMatch)
	scored := relevance.ScoreAll(discoveryResult.Files, fullMatch)

	estimate := estimatorFor(cfg.Tokenizer)

	var dispatcher *compressor.Dispatcher
	if cfg.Compress {
		dispatcher = compressor.NewDispatcher()
	}

	var allocated []pipeline.AllocatedCandidate
	if cfg.MaxTokens > 0 {
		allocated = allocator.Allocate(scored, dispatcher, allocator.Options{
			Ceiling:           cfg.MaxTokens,
			CompressionActive: cfg.Compress,
			Estimate:          estimate,
		})
	} else {
		allocated = allocateWithoutCeiling(scored, dispatcher, cfg.Compress, estimate)
	}

	out, closeOut, err := openSink(cfg)
	if err != nil {
		return pipeline.NewError("opening output sink", err)
	}
	defer closeOut()

	budgetActive := cfg.MaxTokens > 0

	switch {
	case cfg.DryRun:
		if err := emitter.DryRunManifest(out, allocated, budgetActive); err != nil {
			return pipeline.NewError("writing dry-run manifest", err)
		}
	case cfg.Stats:
		summary := emitter.BuildSummary(allocated, discoveryResult.SkipReasons, cfg.MaxTokens)
		if _, err := fmt.Fprintln(out, emitter.FormatSummary(summary, budgetActive)); err != nil {
			return pipeline.NewError("writing summary", err)
		}
	default:
		err := emitter.Emit(out, allocated, discoveryResult.SkipReasons, emitter.Options{
			CompressionActive: cfg.Compress,
			TokenCeiling:      cfg.MaxTokens,
			SummaryAtEnd:      cfg.SummaryAtEnd,
		})
		if err != nil {
			return pipeline.NewError("writing envelope", err)
		}
	}

	if cfg.TokenCount || cfg.TopFiles > 0 || cfg.Heatmap {
		printReports(cfg, allocated)
	}

	summary := emitter.BuildSummary(allocated, discoveryResult.SkipReasons, cfg.MaxTokens)
	slog.Info("condense run complete",
		"included", summary.FullCount+summary.CompressedCount,
		"compressed", summary.CompressedCount,
		"excluded", summary.ExcludedCount,
		"total_tokens", summary.TotalTokens,
	)

	if budgetActive && summary.ExcludedCount > 0 {
		return pipeline.NewPartialError(
			fmt.Sprintf("%d candidate(s) excluded to respect the token ceiling", summary.ExcludedCount),
			nil,
		)
	}

	return nil
}

// Preview runs discovery, scoring, and allocation (when a ceiling is
// configured) without touching the output sink, for use by introspection
// commands like `condense preview` that only need the resulting
// AllocatedCandidate set to build a report.
func Preview(ctx context.Context, cfg *config.FlagValues) ([]pipeline.AllocatedCandidate, error) {
	discoveryResult, err := discoverCandidates(ctx, cfg)
	if err != nil {
		return nil, pipeline.NewError("discovery failed", err)
	}

	fullMatch := relevance.NewFullMatchMatcher(cfg.FullMatch)
	scored := relevance.ScoreAll(discoveryResult.Files, fullMatch)

	estimate := estimatorFor(cfg.Tokenizer)

	var dispatcher *compressor.Dispatcher
	if cfg.Compress {
		dispatcher = compressor.NewDispatcher()
	}

	if cfg.MaxTokens > 0 {
		return allocator.Allocate(scored, dispatcher, allocator.Options{
			Ceiling:           cfg.MaxTokens,
			CompressionActive: cfg.Compress,
			Estimate:          estimate,
		}), nil
	}
	return allocateWithoutCeiling(scored, dispatcher, cfg.Compress, estimate), nil
}

// discoverCandidates builds the composite ignorer, pattern filter, and
// walker configuration from cfg and runs the Candidate Source adapter.
func discoverCandidates(ctx context.Context, cfg *config.FlagValues) (*pipeline.DiscoveryResult, error) {
	defaultIgnorer := discovery.NewDefaultIgnoreMatcher()

	gitignoreMatcher, err := resolveGitignoreMatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading gitignore: %w", err)
	}

	condenseignoreMatcher, err := discovery.NewCondenseignoreMatcher(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading .condenseignore: %w", err)
	}

	patternFilter := discovery.NewPatternFilter(discovery.PatternFilterOptions{
		Includes:   cfg.Includes,
		Excludes:   cfg.Excludes,
		Extensions: cfg.Filters,
	})

	walker := discovery.NewWalker()
	result, err := walker.Walk(ctx, discovery.WalkerConfig{
		Root:                  cfg.Dir,
		GitignoreMatcher:      gitignoreMatcher,
		CondenseignoreMatcher: condenseignoreMatcher,
		DefaultIgnorer:        defaultIgnorer,
		PatternFilter:         patternFilter,
		GitTrackedOnly:        cfg.GitTrackedOnly,
		SkipLargeFiles:        cfg.SkipLargeFiles,
		NoRedact:              cfg.NoRedact,
	})
	if err != nil {
		return nil, err
	}

	return &pipeline.DiscoveryResult{
		Files:        result.Files,
		TotalFound:   result.TotalFound,
		TotalSkipped: result.TotalSkipped,
		SkipReasons:  result.SkipReasons,
	}, nil
}

// resolveGitignoreMatcher honors the --gitignore-path override: when set, it
// replaces the default hierarchical .gitignore discovery with a single
// alternate ignore-source file.
func resolveGitignoreMatcher(cfg *config.FlagValues) (discovery.Ignorer, error) {
	if cfg.GitignorePath == "" {
		return discovery.NewGitignoreMatcher(cfg.Dir)
	}
	return discovery.NewSingleFileIgnoreMatcher(cfg.GitignorePath)
}

// allocateWithoutCeiling builds the AllocatedCandidate set when no token
// ceiling was configured: the allocator is bypassed entirely, every
// candidate is emitted in plain path order, and compression (when active)
// is applied directly without any budget-driven retry.
func allocateWithoutCeiling(scored []pipeline.ScoredCandidate, dispatcher *compressor.Dispatcher, compress bool, estimate func(string, string) int) []pipeline.AllocatedCandidate {
	byPath := make(map[string]pipeline.ScoredCandidate, len(scored))
	baseCandidates := make([]pipeline.Candidate, len(scored))
	for i, c := range scored {
		byPath[c.Path] = c
		baseCandidates[i] = c.Candidate
	}
	ordered := relevance.SortByPath(baseCandidates)

	out := make([]pipeline.AllocatedCandidate, 0, len(ordered))
	for _, c := range ordered {
		sc := byPath[c.Path]
		content := string(sc.Content)

		if compress && dispatcher != nil && dispatcher.SupportsExtension(sc.Extension) {
			result := dispatcher.Compress(sc.Path, sc.Extension, sc.Content)
			if result.Compressed {
				out = append(out, pipeline.AllocatedCandidate{
					ScoredCandidate: sc,
					Decision:        pipeline.DecisionCompressed,
					RenderedContent: result.Text,
					TokenCount:      estimate(result.Text, sc.Extension),
				})
				continue
			}
		}

		out = append(out, pipeline.AllocatedCandidate{
			ScoredCandidate: sc,
			Decision:        pipeline.DecisionFull,
			RenderedContent: content,
			TokenCount:      estimate(content, sc.Extension),
		})
	}
	return out
}

// estimatorFor returns a (content, extension) -> token-count function backed
// by the configured tokenizer. For the exact tiktoken encodings, the
// extension is ignored -- the BPE encoder counts the content directly. For
// "none", the byte/kind estimator is used, matching the Token Estimator's
// pessimistic, kind-dependent rule.
func estimatorFor(name string) func(content string, ext string) int {
	if name == tokenizer.NameNone || name == "" {
		return tokenizer.Estimate
	}
	t, err := tokenizer.NewTokenizer(name)
	if err != nil {
		slog.Warn("unknown tokenizer, falling back to byte estimator", "tokenizer", name, "error", err)
		return tokenizer.Estimate
	}
	return func(content string, _ string) int {
		return t.Count(content)
	}
}

// printReports writes the optional --token-count / --top-files / --heatmap
// reports to stderr after the primary output has been written.
func printReports(cfg *config.FlagValues, allocated []pipeline.AllocatedCandidate) {
	if cfg.TokenCount {
		report := tokenizer.NewTokenReport(allocated, cfg.Tokenizer, cfg.MaxTokens)
		fmt.Fprint(os.Stderr, report.Format())
	}
	if cfg.TopFiles > 0 {
		report := tokenizer.NewTopFilesReport(allocated, cfg.TopFiles)
		fmt.Fprint(os.Stderr, report.Format())
	}
	if cfg.Heatmap {
		report := tokenizer.NewHeatmapReport(allocated, nil)
		fmt.Fprint(os.Stderr, report.Format())
	}
}

// openSink opens the configured output destination: stdout when --stdout is
// set, otherwise the --output file path. The returned close function is
// always safe to call, including for stdout (a no-op).
func openSink(cfg *config.FlagValues) (*os.File, func(), error) {
	if cfg.Stdout {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return nil, func() {}, err
	}
	return f, func() { _ = f.Close() }, nil
}
