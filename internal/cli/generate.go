package cli

import (
	"github.com/condense-dev/condense/internal/composer"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate LLM-optimized context from a codebase",
	Long: `Recursively discover files, apply filters, and produce a structured
context document optimized for large language models.

This is the primary workflow command. Running 'condense' with no subcommand
is equivalent to running 'condense generate'.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Bool("preview", false, "show file tree and token estimate without writing output")
	rootCmd.AddCommand(generateCmd)

	// Register completion for inherited persistent flags on the generate command.
	generateCmd.RegisterFlagCompletionFunc("tokenizer", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"cl100k_base", "o200k_base", "none"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if preview, _ := cmd.Flags().GetBool("preview"); preview {
		return runPreview(cmd, args)
	}
	return composer.Run(cmd.Context(), flagValues)
}
