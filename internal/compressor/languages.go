package compressor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tsc "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tscsharp "github.com/tree-sitter-grammars/tree-sitter-c-sharp/bindings/go"
	tscpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tsgo "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tsjava "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tsphp "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tsruby "github.com/tree-sitter-grammars/tree-sitter-ruby/bindings/go"
	tsrust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// curly is the shared placeholder for every brace-delimited language.
const curly = "{ ... }"

// builtinLanguages returns the closed registry of languages the compression
// dispatcher understands: Rust, TypeScript/TSX, JavaScript/JSX, Python, Go,
// Java, C#, C, C++, Ruby, PHP. Extensions outside this set, or files with no
// extension, are routed to Fallback(unsupported_language) by the dispatcher.
func builtinLanguages() []*Language {
	return []*Language{
		{
			name:       "go",
			extensions: []string{".go"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tsgo.Language()) },
			declarationKinds: map[string]bool{
				"function_declaration": true,
				"method_declaration":   true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "python",
			extensions: []string{".py"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tspython.Language()) },
			declarationKinds: map[string]bool{
				"function_definition": true,
			},
			bodyField:   "body",
			placeholder: " ...",
		},
		{
			name:       "javascript",
			extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tsjavascript.Language()) },
			declarationKinds: map[string]bool{
				"function_declaration":     true,
				"function_expression":      true,
				"arrow_function":           true,
				"method_definition":        true,
				"generator_function_declaration": true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "typescript",
			extensions: []string{".ts"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tstypescript.LanguageTypescript()) },
			declarationKinds: map[string]bool{
				"function_declaration": true,
				"function_expression":  true,
				"arrow_function":       true,
				"method_definition":    true,
				"method_signature":     true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "tsx",
			extensions: []string{".tsx"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tstypescript.LanguageTSX()) },
			declarationKinds: map[string]bool{
				"function_declaration": true,
				"function_expression":  true,
				"arrow_function":       true,
				"method_definition":    true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "java",
			extensions: []string{".java"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tsjava.Language()) },
			declarationKinds: map[string]bool{
				"method_declaration":      true,
				"constructor_declaration": true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "csharp",
			extensions: []string{".cs"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tscsharp.Language()) },
			declarationKinds: map[string]bool{
				"method_declaration":      true,
				"constructor_declaration": true,
				"local_function_statement": true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "c",
			extensions: []string{".c", ".h"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tsc.Language()) },
			declarationKinds: map[string]bool{
				"function_definition": true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "cpp",
			extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tscpp.Language()) },
			declarationKinds: map[string]bool{
				"function_definition": true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "ruby",
			extensions: []string{".rb"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tsruby.Language()) },
			declarationKinds: map[string]bool{
				"method":       true,
				"singleton_method": true,
			},
			bodyField:   "body",
			placeholder: "...",
		},
		{
			name:       "php",
			extensions: []string{".php"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tsphp.LanguagePHP()) },
			declarationKinds: map[string]bool{
				"function_definition": true,
				"method_declaration":  true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
		{
			name:       "rust",
			extensions: []string{".rs"},
			grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tsrust.Language()) },
			declarationKinds: map[string]bool{
				"function_item": true,
			},
			bodyField:   "body",
			placeholder: curly,
		},
	}
}
