package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Java,
		Extensions: []string{".java"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
		SymbolsQuery: `
(class_declaration
  name: (identifier) @impl.type
  body: (class_body
    (method_declaration
      name: (identifier) @method.name) @method.def))

(class_declaration
  name: (identifier) @class.name) @class.def

(interface_declaration
  name: (identifier) @interface.name) @interface.def

(enum_declaration
  name: (identifier) @enum.name) @enum.def

(field_declaration
  (modifiers "final")
  declarator: (variable_declarator
    name: (identifier) @constant.name)) @constant.def
`,
		CallersQuery: `
(method_invocation
  name: (identifier) @callee)
`,
		VariablesQuery: `
(local_variable_declaration
  declarator: (variable_declarator
    name: (identifier) @variable.name)) @variable.def
`,
	})
}
