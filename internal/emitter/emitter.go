// Package emitter serializes the allocator's decisions into the tag-based
// envelope format: a <summary> block plus one <file> block per included
// candidate. The format is deliberately not strict XML -- file content is
// written verbatim, with no escaping, so that emitted code is never mangled.
package emitter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/condense-dev/condense/internal/pipeline"
)

// Options configures a single emission pass.
type Options struct {
	// CompressionActive controls whether the mode attribute is written on
	// every file block, per the invariant that its presence is tied to
	// whether compression mode is active for the run -- not to whether any
	// individual file was actually compressed.
	CompressionActive bool

	// TokenCeiling is the configured hard ceiling (0 means no budget was set).
	TokenCeiling int

	// SummaryAtEnd places the <summary> block after all file blocks instead
	// of before them. This is the default, chosen to preserve streaming.
	SummaryAtEnd bool
}

// Emit writes the full envelope -- summary and file blocks -- to w. allocated
// must already reflect the allocator's final decisions and output order
// (full-match group first, then the rest, or plain path order when no
// budget was configured).
func Emit(w io.Writer, allocated []pipeline.AllocatedCandidate, skipReasons map[string]int, opts Options) error {
	summary := BuildSummary(allocated, skipReasons, opts.TokenCeiling)
	summaryText := formatSummaryBlock(summary, allocated, skipReasons, opts.TokenCeiling > 0)

	if !opts.SummaryAtEnd {
		if _, err := io.WriteString(w, summaryText+"\n\n"); err != nil {
			return err
		}
	}

	for _, ac := range allocated {
		if ac.Decision == pipeline.DecisionExcluded {
			continue
		}
		if err := writeFileBlock(w, ac, opts.CompressionActive); err != nil {
			return err
		}
	}

	if opts.SummaryAtEnd {
		if _, err := io.WriteString(w, "\n"+summaryText); err != nil {
			return err
		}
	}

	return nil
}

// writeFileBlock writes a single <file ...>...</file> block. The mode
// attribute is present iff compressionActive, regardless of this particular
// candidate's decision -- an excluded candidate never reaches here, and a
// Full decision still carries mode="full" whenever compression mode is on
// for the run.
func writeFileBlock(w io.Writer, ac pipeline.AllocatedCandidate, compressionActive bool) error {
	path := toForwardSlash(ac.Path)

	var tag strings.Builder
	tag.WriteString(`<file path="`)
	tag.WriteString(path)
	tag.WriteString(`"`)
	if compressionActive {
		mode := "full"
		if ac.Decision == pipeline.DecisionCompressed {
			mode = "compressed"
		}
		tag.WriteString(` mode="`)
		tag.WriteString(mode)
		tag.WriteString(`"`)
	}
	tag.WriteString(">\n")

	if _, err := io.WriteString(w, tag.String()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ac.RenderedContent); err != nil {
		return err
	}
	if !strings.HasSuffix(ac.RenderedContent, "\n") {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</file>\n"); err != nil {
		return err
	}
	return nil
}

func toForwardSlash(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// BuildSummary aggregates counts across all allocated candidates.
func BuildSummary(allocated []pipeline.AllocatedCandidate, skipReasons map[string]int, ceiling int) pipeline.Summary {
	s := pipeline.Summary{TokenCeiling: ceiling}
	for _, ac := range allocated {
		s.TotalCandidates++
		switch ac.Decision {
		case pipeline.DecisionFull:
			s.FullCount++
			s.TotalTokens += ac.TokenCount
		case pipeline.DecisionCompressed:
			s.CompressedCount++
			s.TotalTokens += ac.TokenCount
		case pipeline.DecisionExcluded:
			s.ExcludedCount++
		}
	}
	return s
}

// extensionCounts tallies included candidates per extension, sorted by
// extension name, for the "Included: N (ext: k, ...)" summary line.
func extensionCounts(allocated []pipeline.AllocatedCandidate) string {
	counts := make(map[string]int)
	for _, ac := range allocated {
		if ac.Decision == pipeline.DecisionExcluded {
			continue
		}
		ext := ac.Extension
		if ext == "" {
			ext = "(none)"
		}
		counts[ext]++
	}
	if len(counts) == 0 {
		return ""
	}
	exts := make([]string, 0, len(counts))
	for e := range counts {
		exts = append(exts, e)
	}
	sort.Strings(exts)

	parts := make([]string, 0, len(exts))
	for _, e := range exts {
		parts = append(parts, fmt.Sprintf("%s: %d", e, counts[e]))
	}
	return strings.Join(parts, ", ")
}

// FormatSummary renders the <summary> block per the envelope format, with no
// per-extension breakdown and no skip-reason detail. Kept for callers (such
// as --stats mode) that only need the budget-relevant totals.
func FormatSummary(s pipeline.Summary, budgetActive bool) string {
	var sb strings.Builder
	sb.WriteString("<summary>\n")

	included := s.FullCount + s.CompressedCount
	sb.WriteString(fmt.Sprintf("Included: %d\n", included))
	sb.WriteString(fmt.Sprintf("Compressed: %d files\n", s.CompressedCount))

	if budgetActive {
		sb.WriteString(fmt.Sprintf("Token budget: %d / %d used\n", s.TotalTokens, s.TokenCeiling))
		sb.WriteString(fmt.Sprintf("Excluded by budget: %d files\n", s.ExcludedCount))
	}

	sb.WriteString("</summary>")
	return sb.String()
}

// formatSummaryBlock renders the full <summary> block including the
// per-extension breakdown of included files and the skip-reason tally,
// per the envelope format's exact layout.
func formatSummaryBlock(s pipeline.Summary, allocated []pipeline.AllocatedCandidate, skipReasons map[string]int, budgetActive bool) string {
	var sb strings.Builder
	sb.WriteString("<summary>\n")

	included := s.FullCount + s.CompressedCount
	if breakdown := extensionCounts(allocated); breakdown != "" {
		sb.WriteString(fmt.Sprintf("Included: %d (%s)\n", included, breakdown))
	} else {
		sb.WriteString(fmt.Sprintf("Included: %d\n", included))
	}
	sb.WriteString(fmt.Sprintf("Compressed: %d files\n", s.CompressedCount))

	skippedTotal, binary, secret, tooLarge := 0, 0, 0, 0
	for reason, n := range skipReasons {
		skippedTotal += n
		switch reason {
		case "binary":
			binary = n
		case "secret":
			secret = n
		case "too_large", "size_limit", "large_file":
			tooLarge = n
		}
	}
	sb.WriteString(fmt.Sprintf("Skipped: %d (%d binary, %d secret, %d too large)\n", skippedTotal, binary, secret, tooLarge))

	if budgetActive {
		sb.WriteString(fmt.Sprintf("Token budget: %d / %d used\n", s.TotalTokens, s.TokenCeiling))
		sb.WriteString(fmt.Sprintf("Excluded by budget: %d files\n", s.ExcludedCount))
	}

	sb.WriteString("</summary>")
	return sb.String()
}

// DryRunManifest renders the dry-run manifest: per candidate, its path and a
// tag describing the decision. budgetActive controls whether decision tags
// are printed at all -- without a budget, the manifest lists bare paths.
func DryRunManifest(w io.Writer, allocated []pipeline.AllocatedCandidate, budgetActive bool) error {
	for _, ac := range allocated {
		path := toForwardSlash(ac.Path)
		if !budgetActive {
			if ac.Decision == pipeline.DecisionExcluded {
				continue
			}
			if _, err := fmt.Fprintln(w, path); err != nil {
				return err
			}
			continue
		}

		var tag string
		switch ac.Decision {
		case pipeline.DecisionFull:
			tag = "[FULL]"
		case pipeline.DecisionCompressed:
			tag = "[COMPRESSED]"
		case pipeline.DecisionExcluded:
			tag = fmt.Sprintf("[EXCLUDED: %s]", ac.ExclusionReason)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", path, tag); err != nil {
			return err
		}
	}
	return nil
}
