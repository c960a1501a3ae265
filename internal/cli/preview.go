// Package cli implements the Cobra command hierarchy for the condense CLI tool.
// This file implements the `condense preview` subcommand which shows file selection
// and token statistics without generating an output file.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/condense-dev/condense/internal/composer"
	"github.com/condense-dev/condense/internal/tokenizer"
)

// previewHeatmap is a local flag target for --heatmap on the preview command.
// It is a file-level variable (not inside init) to avoid dereferencing the
// flagValues pointer before root.go's init() has populated it.
var previewHeatmap bool

// previewCmd implements `condense preview` which shows file selection and token
// distribution without generating an output file.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview file selection and token statistics without generating output",
	Long: `Preview runs the file discovery and token counting stages without writing
an output context file. Use this to inspect which files would be included,
their token counts, and how they relate to your token budget.

Examples:
  # Preview the current directory
  condense preview

  # Show token density heatmap to find context-bloat files
  condense preview --heatmap

  # Preview with a specific tokenizer
  condense preview --tokenizer o200k_base

  # Show the top 20 largest files
  condense preview --top-files 20`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewHeatmap, "heatmap", false, "Show token density heatmap (tokens per line)")
	rootCmd.AddCommand(previewCmd)
}

// runPreview executes the preview subcommand: it runs discovery, scoring, and
// allocation exactly as `condense generate` would, but only prints a report
// to stderr -- no output file or stdout content is produced.
func runPreview(cmd *cobra.Command, args []string) error {
	fv := GlobalFlags()

	// Sync the local heatmap flag back to the shared FlagValues so that
	// downstream callers (e.g. the composer) can read it from a single place.
	fv.Heatmap = previewHeatmap

	allocated, err := composer.Preview(cmd.Context(), fv)
	if err != nil {
		return err
	}

	if fv.Heatmap {
		report := tokenizer.NewHeatmapReport(allocated, nil)
		fmt.Fprint(os.Stderr, report.Format())
		return nil
	}

	if fv.TopFiles > 0 {
		report := tokenizer.NewTopFilesReport(allocated, fv.TopFiles)
		fmt.Fprint(os.Stderr, report.Format())
		return nil
	}

	report := tokenizer.NewTokenReport(allocated, fv.Tokenizer, fv.MaxTokens)
	fmt.Fprint(os.Stderr, report.Format())
	return nil
}
