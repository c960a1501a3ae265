package compressor

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/condense-dev/condense/internal/pipeline"
)

// utf8BOM is the UTF-8 encoding of U+FEFF, stripped before parsing and never
// restored in the output.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dispatcher selects a compressor by extension from a closed registry and
// enforces the fallback policy described in the compression engine's design:
// unsupported language, parse failure, syntax errors, non-shrinking output,
// and panics all fall back to the candidate's original content.
//
// A Dispatcher holds one tree-sitter parser per language, constructed lazily
// and reused across files of the same language within a single pipeline run.
// Per the core's concurrency model, no cross-file state is retained in the
// parser between parses: each Parse call is self-contained.
type Dispatcher struct {
	mu      sync.Mutex
	byExt   map[string]*Language
	parsers map[string]*tree_sitter.Parser
}

// NewDispatcher constructs a Dispatcher with the full built-in language
// registry (languages.go).
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		byExt:   make(map[string]*Language),
		parsers: make(map[string]*tree_sitter.Parser),
	}
	for _, lang := range builtinLanguages() {
		lang := lang
		for _, ext := range lang.extensions {
			d.byExt[ext] = lang
		}
	}
	return d
}

// SupportsExtension reports whether ext has a registered compressor.
func (d *Dispatcher) SupportsExtension(ext string) bool {
	_, ok := d.byExt[ext]
	return ok
}

// parserFor returns (creating if necessary) the shared parser instance for a
// language. Must be called with d.mu held.
func (d *Dispatcher) parserFor(lang *Language) *tree_sitter.Parser {
	if p, ok := d.parsers[lang.name]; ok {
		return p
	}
	p := tree_sitter.NewParser()
	p.SetLanguage(lang.grammar())
	d.parsers[lang.name] = p
	return p
}

// Compress dispatches content (the candidate's raw bytes) through the
// compressor registered for ext. path is used only for the stderr warning
// message on fallback; it never affects the result.
func (d *Dispatcher) Compress(path string, ext string, content []byte) pipeline.CompressionOutput {
	lang, ok := d.byExt[ext]
	if !ok {
		// Condition 1: unsupported language. Routine; no warning.
		return pipeline.CompressionOutput{
			Text:           string(content),
			Compressed:     false,
			FallbackReason: pipeline.FallbackUnsupportedLanguage,
		}
	}

	if !utf8.Valid(content) {
		return fallback(path, string(content), pipeline.FallbackParseError)
	}

	trimmed := bytes.TrimPrefix(content, utf8BOM)

	out, reason := d.compressWithLanguage(lang, trimmed)
	if reason != "" {
		return fallback(path, string(content), reason)
	}
	return pipeline.CompressionOutput{Text: out, Compressed: true}
}

// compressWithLanguage runs the parse-and-elide pipeline for a single
// language, isolated from panics raised by the underlying C parser.
func (d *Dispatcher) compressWithLanguage(lang *Language, content []byte) (out string, reason pipeline.FallbackReason) {
	defer func() {
		if r := recover(); r != nil {
			out, reason = "", pipeline.FallbackPanic
		}
	}()

	d.mu.Lock()
	parser := d.parserFor(lang)
	d.mu.Unlock()

	// CRITICAL: tree-sitter's C core mutates the buffer it is handed via
	// CGO. Parse a defensive copy so the caller's content slice stays
	// immutable for the eventual fallback path.
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := parser.Parse(buf, nil)
	if tree == nil {
		return "", pipeline.FallbackParseError
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.IsError() {
		return "", pipeline.FallbackParseError
	}
	if hasErrorOrMissing(root) {
		return "", pipeline.FallbackSyntaxError
	}

	elided := elideBodies(root, buf, lang)
	normalized := normalizeWhitespace(string(elided))

	if isNonShrinking(normalized, content) {
		return "", pipeline.FallbackNonShrinking
	}

	return normalized, ""
}

// hasErrorOrMissing recursively walks node and reports whether any
// descendant (including node itself) is an ERROR node or a MISSING node.
func hasErrorOrMissing(node *tree_sitter.Node) bool {
	if node.IsMissing() || node.Kind() == "ERROR" {
		return true
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child != nil && hasErrorOrMissing(child) {
			return true
		}
	}
	return false
}

// elideBodies performs the single-pass, order-preserving body elision walk
// described in the language compressors' design: every syntax node whose
// kind is a registered declaration kind has its body field's byte span
// replaced by the language placeholder; everything else is copied verbatim.
func elideBodies(root *tree_sitter.Node, content []byte, lang *Language) []byte {
	var buf bytes.Buffer
	pos := uint(0)

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if lang.declarationKinds[n.Kind()] {
			if body := n.ChildByFieldName(lang.bodyField); body != nil {
				buf.Write(content[pos:body.StartByte()])
				buf.WriteString(lang.placeholder)
				pos = body.EndByte()
				return
			}
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)

	buf.Write(content[pos:])
	return buf.Bytes()
}

// horizontalWhitespaceRun matches one or more spaces/tabs, used to collapse
// intra-line whitespace to a single space per the compressors' determinism
// contract. Newlines, and the line structure they establish between
// top-level declarations, are preserved.
var horizontalWhitespaceRun = regexp.MustCompile(`[ \t]+`)

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(horizontalWhitespaceRun.ReplaceAllString(line, " "), " ")
	}
	return strings.Join(lines, "\n")
}

// isNonShrinking reports whether compressed fails the "never larger than the
// original" invariant: empty, whitespace-only, or at least as long as the
// original content.
func isNonShrinking(compressed string, original []byte) bool {
	if strings.TrimSpace(compressed) == "" {
		return true
	}
	return len(compressed) >= len(original)
}

// fallback builds a CompressionOutput falling back to the candidate's
// original content, and -- for every reason except the routine
// unsupported-language case -- writes the single mandated stderr warning.
func fallback(path string, original string, reason pipeline.FallbackReason) pipeline.CompressionOutput {
	if reason != pipeline.FallbackUnsupportedLanguage {
		fmt.Fprintf(os.Stderr, "Warning: compression failed for %s: %s\n", path, reason)
	}
	return pipeline.CompressionOutput{
		Text:           original,
		Compressed:     false,
		FallbackReason: reason,
	}
}
