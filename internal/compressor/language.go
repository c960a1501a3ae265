// Package compressor implements the Compression Engine: a syntax-tree-driven
// transform that, per supported language, yields a body-stripped equivalent
// of a source file, preserving declarations and signatures while eliding
// executable bodies behind a language-appropriate placeholder.
//
// Every compressor is a pure function of its input bytes (language.go,
// dispatcher.go). Parser invocations are wrapped in fault isolation so a
// grammar defect surfaces as a fallback rather than a process crash.
package compressor

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Language is the extensibility contract for a single supported language.
// New languages are added by constructing a Language value and registering
// it with the dispatcher's registry; no changes to the dispatcher itself are
// required.
type Language struct {
	// name identifies the language for stats and explain output.
	name string

	// extensions are the lowercased file extensions (including the leading
	// dot) that select this language, e.g. ".go".
	extensions []string

	// grammar returns the tree-sitter grammar for this language. Constructed
	// lazily and once per dispatcher instance.
	grammar func() *tree_sitter.Language

	// declarationKinds are the syntax node kinds whose body field should be
	// elided -- functions, methods, constructors. Container kinds such as
	// classes or structs are deliberately excluded so their nested
	// declarations are still visited and preserved.
	declarationKinds map[string]bool

	// bodyField is the field name used to locate the body of a declaration
	// node via Node.ChildByFieldName. Almost every grammar in this registry
	// names it "body".
	bodyField string

	// placeholder replaces an elided body's byte span verbatim.
	placeholder string
}

// Name returns the language's identifier, e.g. "go", "python".
func (l *Language) Name() string { return l.name }

// Extensions returns the file extensions this language claims.
func (l *Language) Extensions() []string { return l.extensions }
