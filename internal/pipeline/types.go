// Package pipeline defines the central data types shared across all pipeline
// stages in condense. These types serve as the data backbone: discovery,
// scoring, compression, allocation, and emission all operate on the same
// DTOs defined here.
//
// This package has zero external dependencies -- only stdlib types.
// It contains only data types and lightweight validation helpers; no business logic.
package pipeline

// ExitCode represents the process exit code returned by the condense CLI.
type ExitCode int

const (
	// ExitSuccess indicates the pipeline completed successfully.
	ExitSuccess ExitCode = 0

	// ExitError indicates a fatal error occurred before any output could be
	// produced (bad configuration, unreadable root, token ceiling of zero).
	ExitError ExitCode = 1

	// ExitPartial indicates partial success: some candidates were excluded to
	// respect the token ceiling, but output was still generated for the rest.
	ExitPartial ExitCode = 2
)

// OutputFormat specifies the format of the rendered context document.
type OutputFormat string

const (
	// FormatMarkdown renders the context document as Markdown with fenced code blocks.
	FormatMarkdown OutputFormat = "markdown"

	// FormatXML renders the context document using the tag-based envelope
	// format described in the emitter package: <summary> plus <file> blocks.
	FormatXML OutputFormat = "xml"
)

// LLMTarget identifies the target LLM platform, allowing output format and
// token-ceiling defaults to be tuned per model family.
type LLMTarget string

const (
	// TargetClaude targets Anthropic Claude models. Defaults to XML output
	// format and a generous token ceiling.
	TargetClaude LLMTarget = "claude"

	// TargetChatGPT targets OpenAI ChatGPT/GPT-4 models. Defaults to Markdown
	// output format.
	TargetChatGPT LLMTarget = "chatgpt"

	// TargetGeneric is a generic target with no model-specific optimizations.
	TargetGeneric LLMTarget = "generic"
)

// Decision records what the pipeline chose to do with a single candidate:
// emit it whole, emit a compressed rendering, or exclude it entirely.
type Decision string

const (
	// DecisionFull means the candidate's original content is emitted unchanged.
	DecisionFull Decision = "full"

	// DecisionCompressed means the candidate's content was replaced by the
	// output of the compression dispatcher.
	DecisionCompressed Decision = "compressed"

	// DecisionExcluded means the candidate does not appear in the output at
	// all. ExclusionReason on the Candidate records why.
	DecisionExcluded Decision = "excluded"
)

// FallbackReason enumerates the conditions under which the compression
// dispatcher abandons a tree-sitter compression attempt and falls back to
// the candidate's full, unmodified content. Every reason below corresponds
// to a named condition in the compression dispatcher's fallback policy; no
// other reason may be reported.
type FallbackReason string

const (
	// FallbackUnsupportedLanguage means no compressor is registered for the
	// candidate's detected language.
	FallbackUnsupportedLanguage FallbackReason = "unsupported_language"

	// FallbackParseError means the tree-sitter parser returned a nil tree or
	// otherwise failed to produce a tree for the content.
	FallbackParseError FallbackReason = "parse_error"

	// FallbackSyntaxError means the parse tree contains ERROR or MISSING
	// nodes, indicating the source could not be fully understood.
	FallbackSyntaxError FallbackReason = "syntax_error"

	// FallbackNonShrinking means the compressed rendering was not strictly
	// smaller than the original content.
	FallbackNonShrinking FallbackReason = "non_shrinking"

	// FallbackPanic means the compressor implementation panicked and was
	// recovered by the dispatcher's fault isolation boundary.
	FallbackPanic FallbackReason = "panic"
)

// Candidate is a single file surfaced by the Candidate Source, carrying the
// bytes and metadata needed by every downstream stage. A Candidate is
// immutable once constructed by discovery; later stages attach their own
// results (Priority, Decision, RenderedContent, ...) rather than mutating
// the original fields.
type Candidate struct {
	// Path is the file path relative to the repository root, normalized to
	// forward slashes. Used for display, rule matching, and deterministic
	// output ordering.
	Path string `json:"path"`

	// AbsPath is the absolute filesystem path. Used only for reading content;
	// never appears in emitted output.
	AbsPath string `json:"-"`

	// Size is the file size in bytes as reported by the filesystem, measured
	// before any compression.
	Size int64 `json:"size"`

	// Depth is the number of path separators between the repository root and
	// this file. Used by the priority scorer's depth-based fallback rule.
	Depth int `json:"depth"`

	// Extension is the lowercased file extension including the leading dot
	// (e.g. ".go"), used for language detection and rule matching.
	Extension string `json:"extension"`

	// Content is the file's raw bytes, read once during discovery and held
	// for the lifetime of the pipeline run. Binary files never reach this
	// field populated; discovery excludes them upstream.
	Content []byte `json:"-"`

	// ContentHash is the XXH3 hash of Content, computed during discovery.
	// No later stage reads it: dry-run manifests list paths and decisions
	// only, and no duplicate detection is performed.
	ContentHash uint64 `json:"content_hash"`

	// Language is the detected source language, used by the compression
	// dispatcher to select a compressor. Empty when no language is detected.
	Language string `json:"language"`

	// IsSymlink indicates whether the file is a symbolic link that was
	// followed during discovery.
	IsSymlink bool `json:"is_symlink"`

	// Error tracks a per-file read failure discovered during traversal. When
	// set, the candidate carries no usable Content and is excluded from
	// scoring and emission. Does not serialize to JSON since error values
	// cannot be marshaled cleanly.
	Error error `json:"-"`
}

// IsValid reports whether the Candidate has the minimum required fields for
// a valid pipeline entry: a non-empty relative path and no read error.
func (c *Candidate) IsValid() bool {
	return c.Path != "" && c.Error == nil
}

// ScoredCandidate pairs a Candidate with the integer priority assigned by the
// priority scorer, plus the name of the rule that produced the score (used
// by the "explain" introspection commands).
type ScoredCandidate struct {
	Candidate

	// Priority is an integer in [0, 100]. Higher means more important to
	// include when the token budget is tight. Assigned by the first matching
	// rule in the scorer's rule table.
	Priority int `json:"priority"`

	// MatchedRule names the scorer rule that produced Priority, e.g. "readme",
	// "entrypoint", "config", "fixture_dir", "test", "depth_fallback".
	MatchedRule string `json:"matched_rule"`

	// FullMatch indicates the candidate matched a user-supplied full-match
	// glob, which exempts it from compression and gives it allocation
	// priority ahead of the rest of the budget.
	FullMatch bool `json:"full_match"`
}

// CompressionOutput is the result of dispatching a candidate through the
// compression engine: either a successful compressed rendering, or a
// fallback to full content with a recorded reason.
type CompressionOutput struct {
	// Text is the resulting content: the compressed rendering on success, or
	// the original content verbatim on fallback.
	Text string

	// Compressed is true only when Text is a genuine compressed rendering.
	// False whenever the dispatcher fell back to full content.
	Compressed bool

	// FallbackReason explains why compression did not apply. Zero value
	// ("") when Compressed is true.
	FallbackReason FallbackReason
}

// AllocatedCandidate is the final per-file outcome produced by the budget
// allocator: which Decision was made, the resulting content and token count,
// and -- for excluded candidates -- why.
type AllocatedCandidate struct {
	ScoredCandidate

	// Decision is what the pipeline chose to do with this candidate.
	Decision Decision `json:"decision"`

	// RenderedContent is the content that will appear in the envelope: the
	// full content, the compressed rendering, or empty when Decision is
	// DecisionExcluded.
	RenderedContent string `json:"-"`

	// TokenCount is the estimated (or exact, in tiktoken mode) token count of
	// RenderedContent.
	TokenCount int `json:"token_count"`

	// ExclusionReason explains why the candidate was excluded. Empty unless
	// Decision is DecisionExcluded.
	ExclusionReason string `json:"exclusion_reason,omitempty"`
}

// DiscoveryResult holds the aggregate output of the file discovery phase,
// including the discovered candidates and summary statistics about what was
// found and what was skipped.
type DiscoveryResult struct {
	// Files is the slice of discovered candidates that passed all filtering
	// criteria (ignore patterns, binary detection, size limits).
	Files []Candidate `json:"files"`

	// TotalFound is the total number of non-directory entries encountered
	// during traversal, before any filtering was applied.
	TotalFound int `json:"total_found"`

	// TotalSkipped is the total number of files that were skipped due to
	// ignore patterns, binary detection, size limits, or other filters.
	TotalSkipped int `json:"total_skipped"`

	// SkipReasons maps each skip reason (e.g. "binary", "ignored",
	// "large_file") to the count of files skipped for that reason.
	SkipReasons map[string]int `json:"skip_reasons"`
}

// Summary is the aggregate report emitted alongside the envelope: counts of
// files by decision, total tokens, and the budget (if any) that constrained
// allocation.
type Summary struct {
	// TotalCandidates is the number of candidates considered by the allocator.
	TotalCandidates int `json:"total_candidates"`

	// FullCount is the number of candidates emitted with full content.
	FullCount int `json:"full_count"`

	// CompressedCount is the number of candidates emitted with compressed content.
	CompressedCount int `json:"compressed_count"`

	// ExcludedCount is the number of candidates excluded to respect the
	// token ceiling.
	ExcludedCount int `json:"excluded_count"`

	// TotalTokens is the sum of TokenCount across all emitted (non-excluded)
	// candidates.
	TotalTokens int `json:"total_tokens"`

	// TokenCeiling is the configured hard ceiling, or 0 when none was set.
	TokenCeiling int `json:"token_ceiling"`
}
