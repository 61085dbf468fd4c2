package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        JavaScript,
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
		SymbolsQuery: `
(class_declaration
  name: (identifier) @impl.type
  body: (class_body
    (method_definition
      name: (property_identifier) @method.name) @method.def))

(function_declaration
  name: (identifier) @function.name) @function.def

(lexical_declaration
  (variable_declarator
    name: (identifier) @function.name
    value: [(arrow_function) (function_expression)])) @function.def

(class_declaration
  name: (identifier) @class.name) @class.def

(lexical_declaration
  "const"
  (variable_declarator
    name: (identifier) @constant.name
    (#match? @constant.name "^[A-Z][A-Z0-9_]*$"))) @constant.def
`,
		CallersQuery: `
(call_expression
  function: (identifier) @callee)

(call_expression
  function: (member_expression
    property: (property_identifier) @callee))
`,
		VariablesQuery: `
(variable_declarator
  name: (identifier) @variable.name) @variable.def
`,
	})
}
