package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Python,
		Extensions: []string{".py", ".pyi"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
		SymbolsQuery: `
(class_definition
  name: (identifier) @impl.type
  body: (block
    (function_definition
      name: (identifier) @method.name) @method.def))

(function_definition
  name: (identifier) @function.name) @function.def

(class_definition
  name: (identifier) @class.name) @class.def

(assignment
  left: (identifier) @constant.name
  (#match? @constant.name "^[A-Z][A-Z0-9_]*$")) @constant.def
`,
		CallersQuery: `
(call
  function: (identifier) @callee)

(call
  function: (attribute
    attribute: (identifier) @callee))
`,
		VariablesQuery: `
(assignment
  left: (identifier) @variable.name) @variable.def
`,
	})
}
