package config

// Config is the top-level configuration type parsed from a condense.toml file.
// It holds a map of named profiles keyed by profile name. Profile names are
// case-sensitive. The special name "default" is the built-in fallback profile.
type Config struct {
	// Profile maps profile names to their configuration. Access via
	// cfg.Profile["default"] or cfg.Profile["finvault"].
	Profile map[string]*Profile `toml:"profile"`
}

// Profile defines all settings for a single named profile. String, int and
// slice fields with zero values are considered unset and will be filled in by
// the merge/inheritance pipeline; bool fields always take the child's value,
// false included. The Extends field enables profile inheritance.
type Profile struct {
	// Extends is the name of a parent profile to inherit from. When set,
	// all unset fields in this profile are filled from the named parent.
	// A nil pointer means no inheritance.
	Extends *string `toml:"extends"`

	// Output is the file path for the generated context document.
	// Example: "condense-output.md" or ".condense/finvault-context.md"
	Output string `toml:"output"`

	// Format controls the output format. Valid values: "markdown", "xml", "plain".
	Format string `toml:"format"`

	// MaxTokens is the token budget cap for the generated output.
	// Files are pruned from the output if the total exceeds this limit.
	MaxTokens int `toml:"max_tokens"`

	// Tokenizer selects the token counting model. Valid values: "cl100k_base", "o200k_base", "none".
	Tokenizer string `toml:"tokenizer"`

	// Compression enables tree-sitter body-elision compression for
	// supported source languages.
	Compression bool `toml:"compression"`

	// Redaction enables secret redaction before writing output.
	Redaction bool `toml:"redaction"`

	// Target selects LLM-specific output optimizations.
	// Valid values: "claude", "chatgpt", "generic", or empty string.
	Target string `toml:"target"`

	// Ignore is the list of glob patterns for files and directories to
	// skip during discovery. Patterns are evaluated with doublestar.
	Ignore []string `toml:"ignore"`

	// PriorityFiles is the list of globs for files that get full,
	// uncompressed content, the same as --full-match globs. They do not
	// change the Priority Scorer's score.
	PriorityFiles []string `toml:"priority_files"`

	// Include is the list of glob patterns a file must match to be kept.
	// It does not re-include files that ignore patterns exclude.
	Include []string `toml:"include"`

	// Relevance holds the tier glob lists. Each tier is a list of glob
	// patterns. They are validated and linted but not applied: file ordering
	// comes from the Priority Scorer's fixed rule table.
	Relevance RelevanceConfig `toml:"relevance"`

	// RedactionConfig holds fine-grained redaction settings.
	RedactionConfig RedactionConfig `toml:"redaction_config"`
}

// RelevanceConfig defines glob patterns for each relevance tier (Tier 0 is
// listed first). The tiers are not used to score or sort files.
// All fields are slices of doublestar glob patterns.
type RelevanceConfig struct {
	// Tier0 contains the highest-priority files (configuration, schema files).
	Tier0 []string `toml:"tier_0"`

	// Tier1 contains primary source code directories.
	Tier1 []string `toml:"tier_1"`

	// Tier2 contains secondary source files, components, and utilities.
	Tier2 []string `toml:"tier_2"`

	// Tier3 contains test files.
	Tier3 []string `toml:"tier_3"`

	// Tier4 contains documentation.
	Tier4 []string `toml:"tier_4"`

	// Tier5 contains CI/CD configs, lock files, and lowest-priority files.
	Tier5 []string `toml:"tier_5"`
}

// RedactionConfig controls secret detection and redaction behavior.
type RedactionConfig struct {
	// Enabled turns secret redaction on or off for this profile.
	Enabled bool `toml:"enabled"`

	// ExcludePaths is the list of glob patterns for paths to skip during
	// redaction scanning (e.g., test fixtures and documentation).
	ExcludePaths []string `toml:"exclude_paths"`

	// ConfidenceThreshold controls which detected secrets are redacted.
	// Valid values: "low", "medium", "high". Defaults to "high".
	ConfidenceThreshold string `toml:"confidence_threshold"`
}
