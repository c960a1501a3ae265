// Package tokenizer provides token counting implementations for LLM context
// documents. This file implements report data structures and formatters for
// presenting token count summaries to the user via the CLI.
package tokenizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/condense-dev/condense/internal/pipeline"
)

// ruleBandLabel maps each Priority Scorer rule to the editorial band it
// stands for, for display purposes only.
var ruleBandLabel = map[string]string{
	"readme":         "README",
	"entrypoint":     "Entrypoint",
	"config":         "Config",
	"test":           "Test",
	"fixture_dir":    "Fixture",
	"depth_fallback": "Source",
}

// scoreBandLabel guesses a band from a priority score alone, for candidates
// that carry no scorer rule. Rules share score ranges (a depth-fallback file
// can score 30, like a test), so the guess can differ from the rule's band.
func scoreBandLabel(score int) string {
	switch {
	case score >= 100:
		return "README"
	case score >= 90:
		return "Entrypoint"
	case score >= 80:
		return "Config"
	case score >= 30 && score < 80:
		return "Test"
	case score > 5 && score < 30:
		return "Source"
	default:
		return "Fixture"
	}
}

// ScoreBandStat holds per-band file and token counts.
type ScoreBandStat struct {
	// FileCount is the number of files in this band.
	FileCount int

	// TokenCount is the total number of tokens across all files in this band.
	TokenCount int
}

// TokenReport holds the summary data for a full token count report.
type TokenReport struct {
	// TokenizerName is the encoding name used (e.g., "cl100k_base" or "none").
	TokenizerName string

	// TotalFiles is the total number of files included in the report.
	TotalFiles int

	// TotalTokens is the sum of token counts across all files.
	TotalTokens int

	// Ceiling is the configured hard token ceiling (0 means unlimited).
	Ceiling int

	// BandStats maps score-band label to per-band statistics.
	BandStats map[string]*ScoreBandStat
}

// NewTokenReport builds a TokenReport from allocated candidates that were not
// excluded. tokenizerName is the encoding name; ceiling is the configured
// hard ceiling (0 = unlimited).
func NewTokenReport(files []pipeline.AllocatedCandidate, tokenizerName string, ceiling int) *TokenReport {
	r := &TokenReport{
		TokenizerName: tokenizerName,
		Ceiling:       ceiling,
		BandStats:     make(map[string]*ScoreBandStat),
	}

	for _, ac := range files {
		if ac.Decision == pipeline.DecisionExcluded {
			continue
		}
		r.TotalFiles++
		r.TotalTokens += ac.TokenCount

		label, ok := ruleBandLabel[ac.MatchedRule]
		if !ok {
			label = scoreBandLabel(ac.Priority)
		}
		stat, ok := r.BandStats[label]
		if !ok {
			stat = &ScoreBandStat{}
			r.BandStats[label] = stat
		}
		stat.FileCount++
		stat.TokenCount += ac.TokenCount
	}

	return r
}

// Format renders the token report as a plain-text string suitable for printing
// to stderr. Uses unicode box-drawing chars for the separator line.
func (r *TokenReport) Format() string {
	var sb strings.Builder

	title := fmt.Sprintf("Token Report (%s)", r.TokenizerName)
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")
	fmt.Fprintf(&sb, "Total files:  %s\n", FormatInt(r.TotalFiles))
	fmt.Fprintf(&sb, "Total tokens: %s\n", FormatInt(r.TotalTokens))

	if r.Ceiling > 0 {
		pct := int(float64(r.TotalTokens) / float64(r.Ceiling) * 100)
		fmt.Fprintf(&sb, "Ceiling:      %s (%d%% used)\n", FormatInt(r.Ceiling), pct)
	} else {
		sb.WriteString("Ceiling:      unlimited\n")
	}

	if len(r.BandStats) > 0 {
		sb.WriteString("\nBy Score Band:\n")
		labels := make([]string, 0, len(r.BandStats))
		for label := range r.BandStats {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			stat := r.BandStats[label]
			fmt.Fprintf(&sb, "  %-10s: %s files  %s tokens\n",
				label,
				FormatInt(stat.FileCount),
				FormatInt(stat.TokenCount),
			)
		}
	}

	return sb.String()
}

// TopFilesEntry holds data for a single file in the top-N listing.
type TopFilesEntry struct {
	// Path is the relative file path.
	Path string

	// TokenCount is the number of tokens in this file.
	TokenCount int

	// Priority is the score assigned by the priority scorer.
	Priority int

	// Decision is what the allocator chose for this file.
	Decision pipeline.Decision
}

// TopFilesReport holds the top-N files by token count.
type TopFilesReport struct {
	// N is the requested limit (0 means all files were included).
	N int

	// Files is the sorted list of entries (descending by TokenCount).
	Files []TopFilesEntry
}

// NewTopFilesReport builds a TopFilesReport from allocated candidates. Files
// are sorted by TokenCount descending. n=0 includes all files.
func NewTopFilesReport(files []pipeline.AllocatedCandidate, n int) *TopFilesReport {
	entries := make([]TopFilesEntry, 0, len(files))
	for _, ac := range files {
		entries = append(entries, TopFilesEntry{
			Path:       ac.Path,
			TokenCount: ac.TokenCount,
			Priority:   ac.Priority,
			Decision:   ac.Decision,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TokenCount > entries[j].TokenCount
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	return &TopFilesReport{N: n, Files: entries}
}

// Format renders the top-N files report as a plain-text string.
func (r *TopFilesReport) Format() string {
	var sb strings.Builder

	label := "All Files"
	if r.N > 0 {
		label = fmt.Sprintf("Top %d Files", r.N)
	}

	title := fmt.Sprintf("%s by Token Count:", label)
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")

	if len(r.Files) == 0 {
		sb.WriteString("  (no files)\n")
		return sb.String()
	}

	for i, entry := range r.Files {
		fmt.Fprintf(&sb, " %2d. %-50s  %s tokens  (score %d, %s)\n",
			i+1,
			entry.Path,
			FormatInt(entry.TokenCount),
			entry.Priority,
			entry.Decision,
		)
	}

	return sb.String()
}

// HeatmapEntry holds data for a single file in the token density heatmap.
type HeatmapEntry struct {
	// Path is the relative file path.
	Path string

	// Lines is the number of lines in the file.
	Lines int

	// Tokens is the number of tokens in the file.
	Tokens int

	// Density is the token density: tokens per line.
	// Files with 0 lines get density 0 (no division by zero).
	Density float64

	// Priority is the score assigned by the priority scorer.
	Priority int
}

// HeatmapReport holds files sorted by token density (tokens per line) descending.
type HeatmapReport struct {
	// Files is the list of entries sorted by Density descending.
	Files []HeatmapEntry
}

// NewHeatmapReport builds a HeatmapReport from allocated candidates.
// lineCounts maps path -> number of lines in that file. Files with 0 lines
// get density 0 (no division by zero). A nil lineCounts is handled gracefully.
func NewHeatmapReport(files []pipeline.AllocatedCandidate, lineCounts map[string]int) *HeatmapReport {
	entries := make([]HeatmapEntry, 0, len(files))

	for _, ac := range files {
		lines := 0
		if lineCounts != nil {
			lines = lineCounts[ac.Path]
		}

		var density float64
		if lines > 0 {
			density = float64(ac.TokenCount) / float64(lines)
		}

		entries = append(entries, HeatmapEntry{
			Path:     ac.Path,
			Lines:    lines,
			Tokens:   ac.TokenCount,
			Density:  density,
			Priority: ac.Priority,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Density > entries[j].Density
	})

	return &HeatmapReport{Files: entries}
}

// Format renders the heatmap as a plain-text string sorted by density descending.
func (r *HeatmapReport) Format() string {
	var sb strings.Builder

	title := "Token Heatmap (tokens per line):"
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")

	if len(r.Files) == 0 {
		sb.WriteString("  (no files)\n")
		return sb.String()
	}

	for i, entry := range r.Files {
		fmt.Fprintf(&sb, " %2d. %-50s  %.1f tok/line  (%s lines, %s tokens)\n",
			i+1,
			entry.Path,
			entry.Density,
			FormatInt(entry.Lines),
			FormatInt(entry.Tokens),
		)
	}

	return sb.String()
}

// FormatInt formats an integer with comma separators (e.g., 89420 -> "89,420").
// Exported for use in CLI formatting code.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}

	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	// Insert commas every 3 digits from the right.
	var result []byte
	start := len(s) % 3
	if start == 0 {
		start = 3
	}
	result = append(result, s[:start]...)
	for i := start; i < len(s); i += 3 {
		result = append(result, ',')
		result = append(result, s[i:i+3]...)
	}

	return string(result)
}
