package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_markdown "github.com/tree-sitter-grammars/tree-sitter-markdown/bindings/go"
)

// Pdf's queries run against the markdown grammar: PDF bytes are converted to
// markdown text before any symbol extraction sees them. Heading nodes stand
// in for definitions so chunking and peek still have named anchors.
func init() {
	Register(&Spec{
		Tag:        Pdf,
		Extensions: []string{".pdf"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_markdown.Language()) },
		SymbolsQuery: `
(atx_heading
  (inline) @module.name) @module.def

(setext_heading
  (paragraph
    (inline) @module.name)) @module.def
`,
		CallersQuery:   ``,
		VariablesQuery: ``,
	})
}
