package tokenizer

import "strings"

// proseExtensions is the closed set of extensions classified as prose for
// estimation purposes. Everything else is treated as code. Matching is
// case-insensitive and ignores the leading dot.
var proseExtensions = map[string]bool{
	"md":   true,
	"txt":  true,
	"rst":  true,
	"adoc": true,
	"org":  true,
}

// IsProseExtension reports whether ext (with or without a leading dot) is
// classified as prose by the estimator. Any extension not in the closed
// prose set is classified as code.
func IsProseExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return proseExtensions[ext]
}

// estimatorTokenizer is the "none" Tokenizer implementation.
//
// It estimates token count with the pessimistic, kind-dependent heuristic:
// floor(bytes/4) for prose, floor(bytes/3) for code. Floor division is
// intentional: the allocator must never under-count tokens, since
// under-counting could let emitted content exceed a configured ceiling.
//
// estimatorTokenizer is goroutine-safe: it holds no mutable state.
type estimatorTokenizer struct{}

// newEstimatorTokenizer constructs an estimatorTokenizer.
func newEstimatorTokenizer() *estimatorTokenizer {
	return &estimatorTokenizer{}
}

// Count returns floor(len(text)/4). Used only when no extension-specific
// kind is known; callers that have a path should prefer EstimateByExtension.
func (e *estimatorTokenizer) Count(text string) int {
	return len(text) / 4
}

// Name returns "none", indicating this is the character-count estimator.
func (e *estimatorTokenizer) Name() string {
	return NameNone
}

// EstimateBytes applies the Token Estimator's pure function of
// (byte_count, kind): floor(bytes/4) for prose, floor(bytes/3) for code.
func EstimateBytes(byteCount int, ext string) int {
	if IsProseExtension(ext) {
		return byteCount / 4
	}
	return byteCount / 3
}

// Estimate is EstimateBytes applied to a text value's UTF-8 byte length.
func Estimate(text string, ext string) int {
	return EstimateBytes(len(text), ext)
}
