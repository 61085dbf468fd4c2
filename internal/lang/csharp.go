package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        CSharp,
		Extensions: []string{".cs"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_c_sharp.Language()) },
		SymbolsQuery: `
(class_declaration
  name: (identifier) @impl.type
  body: (declaration_list
    (method_declaration
      name: (identifier) @method.name) @method.def))

(class_declaration
  name: (identifier) @class.name) @class.def

(interface_declaration
  name: (identifier) @interface.name) @interface.def

(enum_declaration
  name: (identifier) @enum.name) @enum.def

(struct_declaration
  name: (identifier) @struct.name) @struct.def

(field_declaration
  (modifier "const")
  (variable_declaration
    (variable_declarator
      name: (identifier) @constant.name))) @constant.def
`,
		CallersQuery: `
(invocation_expression
  function: (identifier) @callee)

(invocation_expression
  function: (member_access_expression
    name: (identifier) @callee))
`,
		VariablesQuery: `
(variable_declarator
  name: (identifier) @variable.name) @variable.def
`,
	})
}
