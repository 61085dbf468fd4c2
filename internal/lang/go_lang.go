package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Go,
		Extensions: []string{".go"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
		SymbolsQuery: `
(function_declaration
  name: (identifier) @function.name) @function.def

(method_declaration
  receiver: (parameter_list
    (parameter_declaration
      type: [
        (type_identifier) @impl.type
        (pointer_type (type_identifier) @impl.type)
      ]))
  name: (field_identifier) @method.name) @method.def

(type_spec
  name: (type_identifier) @struct.name
  type: (struct_type)) @struct.def

(type_spec
  name: (type_identifier) @interface.name
  type: (interface_type)) @interface.def

(type_spec
  name: (type_identifier) @type.name
  type: [
    (type_identifier)
    (qualified_type)
    (map_type)
    (slice_type)
    (array_type)
    (pointer_type)
    (function_type)
    (channel_type)
  ]) @type.def

(const_spec
  name: (identifier) @constant.name) @constant.def
`,
		CallersQuery: `
(call_expression
  function: (identifier) @callee)

(call_expression
  function: (selector_expression
    field: (field_identifier) @callee))
`,
		VariablesQuery: `
(var_spec
  name: (identifier) @variable.name) @variable.def

(short_var_declaration
  left: (expression_list (identifier) @variable.name)) @variable.def
`,
	})
}
