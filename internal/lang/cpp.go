package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        CPP,
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
		SymbolsQuery: `
(class_specifier
  name: (type_identifier) @impl.type
  body: (field_declaration_list
    (function_definition
      declarator: (function_declarator
        declarator: (field_identifier) @method.name)) @method.def))

(function_definition
  declarator: (function_declarator
    declarator: (identifier) @function.name)) @function.def

(class_specifier
  name: (type_identifier) @class.name) @class.def

(struct_specifier
  name: (type_identifier) @struct.name
  body: (field_declaration_list)) @struct.def

(enum_specifier
  name: (type_identifier) @enum.name) @enum.def

(namespace_definition
  name: (namespace_identifier) @module.name) @module.def
`,
		CallersQuery: `
(call_expression
  function: (identifier) @callee)

(call_expression
  function: (field_expression
    field: (field_identifier) @callee))
`,
		VariablesQuery: `
(declaration
  declarator: (init_declarator
    declarator: (identifier) @variable.name)) @variable.def
`,
	})
}
