package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        C,
		Extensions: []string{".c", ".h"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_c.Language()) },
		SymbolsQuery: `
(function_definition
  declarator: (function_declarator
    declarator: (identifier) @function.name)) @function.def

(struct_specifier
  name: (type_identifier) @struct.name
  body: (field_declaration_list)) @struct.def

(enum_specifier
  name: (type_identifier) @enum.name
  body: (enumerator_list)) @enum.def

(type_definition
  declarator: (type_identifier) @type.name) @type.def

(declaration
  (type_qualifier)
  declarator: (init_declarator
    declarator: (identifier) @constant.name)) @constant.def
`,
		CallersQuery: `
(call_expression
  function: (identifier) @callee)
`,
		VariablesQuery: `
(declaration
  declarator: (init_declarator
    declarator: (identifier) @variable.name)) @variable.def
`,
	})
}
