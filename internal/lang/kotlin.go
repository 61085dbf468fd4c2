package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_kotlin "github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Kotlin,
		Extensions: []string{".kt", ".kts"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_kotlin.Language()) },
		SymbolsQuery: `
(class_declaration
  (type_identifier) @impl.type
  (class_body
    (function_declaration
      (simple_identifier) @method.name) @method.def))

(function_declaration
  (simple_identifier) @function.name) @function.def

(class_declaration
  (type_identifier) @class.name) @class.def

(object_declaration
  (type_identifier) @module.name) @module.def

(property_declaration
  "val"
  (variable_declaration
    (simple_identifier) @constant.name)) @constant.def
`,
		CallersQuery: `
(call_expression
  (simple_identifier) @callee)
`,
		VariablesQuery: `
(property_declaration
  "var"
  (variable_declaration
    (simple_identifier) @variable.name)) @variable.def
`,
	})
}
