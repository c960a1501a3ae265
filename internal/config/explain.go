package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/condense-dev/condense/internal/relevance"
)

// TraceStep records one evaluation step during file rule tracing.
type TraceStep struct {
	// StepNum is the 1-based step number in the evaluation sequence.
	StepNum int

	// Rule describes the rule being evaluated, e.g. "Default ignore patterns".
	Rule string

	// Matched indicates whether the rule matched the file path.
	Matched bool

	// Outcome describes the result of this step, e.g. "continue", "EXCLUDED",
	// "INCLUDED", or `score 70 (rule "depth_fallback")`.
	Outcome string
}

// ExplainResult holds the full explanation for a single file path showing
// how a profile would process the file during context generation.
type ExplainResult struct {
	// FilePath is the file path being explained.
	FilePath string

	// ProfileName is the name of the profile being used for display.
	ProfileName string

	// Extends is the parent profile name, or empty if there is no parent.
	Extends string

	// Included indicates whether the file is included (true) or excluded (false).
	Included bool

	// ExcludedBy names the rule that caused exclusion when Included is false.
	ExcludedBy string

	// Score is the Priority Scorer's result for this file (relevance.Score),
	// in [0, 100]. Zero and meaningless when Included is false.
	Score int

	// ScoreRule names the first-match-wins scorer rule that produced Score,
	// e.g. "readme", "entrypoint", "config", "test", "depth_fallback".
	ScoreRule string

	// IsPriority indicates whether the file matches one of the profile's
	// priority_files entries, which forces full, uncompressed content the
	// way a --full-match glob does. It does not affect the Priority Scorer's
	// score.
	IsPriority bool

	// RedactionOn indicates whether redaction is enabled for this file.
	RedactionOn bool

	// Compression is the language name if compression applies, otherwise "".
	Compression string

	// Trace is the ordered list of evaluation steps.
	Trace []TraceStep
}

// ExplainFile evaluates how profile p would process filePath and returns a
// full ExplainResult describing the evaluation. profileName is used for
// display only; it does not affect the evaluation logic.
//
// The function simulates the discovery pipeline steps in order:
//  1. Default ignore patterns
//  2. Profile ignore patterns
//  3. .gitignore rules (not simulated -- requires disk access)
//  4. Include filter
//  5. Priority files check (forces full-match, not a score override)
//  6. Priority Scorer (relevance.Score -- the same rule table the real
//     pipeline's Allocator sorts and packs by)
func ExplainFile(filePath, profileName string, p *Profile) ExplainResult {
	result := ExplainResult{
		FilePath:    filePath,
		ProfileName: profileName,
	}

	// Set Extends if the profile inherits from a parent.
	if p.Extends != nil && *p.Extends != "" {
		result.Extends = *p.Extends
	}

	stepNum := 0
	nextStep := func() int {
		stepNum++
		return stepNum
	}

	// ── Step 1: Default ignore patterns ────────────────────────────────────
	defaults := DefaultProfile()
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Default ignore patterns",
		}
		matchedPattern := ""
		for _, pattern := range defaults.Ignore {
			if matchesGlob(pattern, filePath) {
				matchedPattern = pattern
				break
			}
		}
		if matchedPattern != "" {
			step.Matched = true
			step.Outcome = "EXCLUDED"
			result.Trace = append(result.Trace, step)
			result.Included = false
			result.ExcludedBy = fmt.Sprintf("default ignore pattern %q", matchedPattern)
			return result
		}
		step.Matched = false
		step.Outcome = "no match -> continue"
		result.Trace = append(result.Trace, step)
	}

	// ── Step 2: Profile ignore patterns ────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Profile ignore patterns",
		}
		matchedPattern := ""
		for _, pattern := range p.Ignore {
			if matchesGlob(pattern, filePath) {
				matchedPattern = pattern
				break
			}
		}
		if matchedPattern != "" {
			step.Matched = true
			step.Outcome = "EXCLUDED"
			result.Trace = append(result.Trace, step)
			result.Included = false
			result.ExcludedBy = fmt.Sprintf("profile ignore pattern %q", matchedPattern)
			return result
		}
		step.Matched = false
		step.Outcome = "no match -> continue"
		result.Trace = append(result.Trace, step)
	}

	// ── Step 3: .gitignore rules ────────────────────────────────────────────
	{
		result.Trace = append(result.Trace, TraceStep{
			StepNum: nextStep(),
			Rule:    ".gitignore rules",
			Matched: false,
			Outcome: "not simulated -> continue",
		})
	}

	// ── Step 4: Include filter ──────────────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Include filter",
		}
		if len(p.Include) > 0 {
			if !matchesAny(filePath, p.Include) {
				step.Matched = true
				step.Outcome = "EXCLUDED"
				result.Trace = append(result.Trace, step)
				result.Included = false
				result.ExcludedBy = "include filter (not in include list)"
				return result
			}
			step.Matched = false
			step.Outcome = "include match -> continue"
		} else {
			step.Matched = false
			step.Outcome = "not active -> continue"
		}
		result.Trace = append(result.Trace, step)
	}

	// priority_files forces full content the way a --full-match glob does; it
	// has no bearing on the Priority Scorer's score. Explain shares the same
	// FullMatchMatcher and Score rule table the real pipeline's Allocator uses
	// (internal/relevance.Explain), so both steps below come from one call.
	exp := relevance.Explain(filePath, depthOf(filePath), relevance.NewFullMatchMatcher(p.PriorityFiles))

	// ── Step 5: Priority files check ────────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Priority files",
			Matched: exp.FullMatch,
		}
		if exp.FullMatch {
			result.IsPriority = true
			step.Outcome = "priority file -> forced full content (full-match)"
		} else {
			step.Outcome = "no match -> continue"
		}
		result.Trace = append(result.Trace, step)
	}

	// ── Step 6: Priority Scorer ──────────────────────────────────────────────
	// The same first-match-wins rule table the real pipeline's Allocator
	// sorts and packs by (internal/relevance.Score).
	{
		result.Score = exp.Score
		result.ScoreRule = exp.Rule
		result.Trace = append(result.Trace, TraceStep{
			StepNum: nextStep(),
			Rule:    "Priority Scorer",
			Matched: true,
			Outcome: fmt.Sprintf("score %d (rule %q)", exp.Score, exp.Rule),
		})
	}

	// All steps passed -- file is included.
	result.Included = true

	// ── Redaction check ─────────────────────────────────────────────────────
	result.RedactionOn = p.Redaction && !matchesAny(filePath, p.RedactionConfig.ExcludePaths)

	// ── Compression check ───────────────────────────────────────────────────
	result.Compression = compressionLanguage(filePath)

	return result
}

// compressionLanguage returns the language name for Tree-sitter compression
// support based on the file extension. Returns "" if the extension is not
// supported.
func compressionLanguage(filePath string) string {
	ext := filepath.Ext(filePath)
	languages := map[string]string{
		".go":   "Go",
		".ts":   "TypeScript",
		".tsx":  "TypeScript (TSX)",
		".js":   "JavaScript",
		".jsx":  "JavaScript (JSX)",
		".mjs":  "JavaScript",
		".cjs":  "JavaScript",
		".py":   "Python",
		".rs":   "Rust",
		".c":    "C",
		".cpp":  "C++",
		".cc":   "C++",
		".cxx":  "C++",
		".hpp":  "C++",
		".hh":   "C++",
		".h":    "C/C++ header",
		".java": "Java",
		".rb":   "Ruby",
		".php":  "PHP",
		".cs":   "C#",
	}
	return languages[ext]
}

// matchesAny reports whether path matches any of the given glob patterns.
// Pattern matching errors are silently ignored.
func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesGlob(pattern, path) {
			return true
		}
	}
	return false
}

// matchesGlob reports whether filePath matches the given doublestar glob
// pattern. Match errors are silently ignored and treated as non-matches.
func matchesGlob(pattern, filePath string) bool {
	matched, err := doublestar.Match(pattern, filePath)
	if err != nil {
		return false
	}
	return matched
}

// depthOf counts the "/"-delimited path separators in filePath, matching the
// Priority Scorer's depth baseline: a file directly in root has depth 0.
func depthOf(filePath string) int {
	normalized := strings.TrimPrefix(strings.ReplaceAll(filePath, `\`, "/"), "./")
	if normalized == "" {
		return 0
	}
	return strings.Count(normalized, "/")
}
