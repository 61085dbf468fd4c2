package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Ruby,
		Extensions: []string{".rb"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_ruby.Language()) },
		SymbolsQuery: `
(class
  name: (constant) @impl.type
  body: (body_statement
    (method
      name: (identifier) @method.name) @method.def))

(method
  name: (identifier) @function.name) @function.def

(class
  name: (constant) @class.name) @class.def

(module
  name: (constant) @module.name) @module.def

(assignment
  left: (constant) @constant.name) @constant.def
`,
		CallersQuery: `
(call
  method: (identifier) @callee)
`,
		VariablesQuery: `
(assignment
  left: (identifier) @variable.name) @variable.def
`,
	})
}
