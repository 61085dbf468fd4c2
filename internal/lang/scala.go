package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_scala "github.com/tree-sitter/tree-sitter-scala/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Scala,
		Extensions: []string{".scala", ".sc"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_scala.Language()) },
		SymbolsQuery: `
(class_definition
  name: (identifier) @impl.type
  body: (template_body
    (function_definition
      name: (identifier) @method.name) @method.def))

(function_definition
  name: (identifier) @function.name) @function.def

(class_definition
  name: (identifier) @class.name) @class.def

(trait_definition
  name: (identifier) @trait.name) @trait.def

(object_definition
  name: (identifier) @module.name) @module.def

(val_definition
  pattern: (identifier) @constant.name) @constant.def
`,
		CallersQuery: `
(call_expression
  function: (identifier) @callee)

(call_expression
  function: (field_expression
    field: (identifier) @callee))
`,
		VariablesQuery: `
(var_definition
  pattern: (identifier) @variable.name) @variable.def
`,
	})
}
