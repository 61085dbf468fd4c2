package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        PHP,
		Extensions: []string{".php"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHPOnly()) },
		SymbolsQuery: `
(class_declaration
  name: (name) @impl.type
  body: (declaration_list
    (method_declaration
      name: (name) @method.name) @method.def))

(function_definition
  name: (name) @function.name) @function.def

(class_declaration
  name: (name) @class.name) @class.def

(interface_declaration
  name: (name) @interface.name) @interface.def

(const_element
  (name) @constant.name) @constant.def
`,
		CallersQuery: `
(function_call_expression
  function: (name) @callee)

(member_call_expression
  name: (name) @callee)
`,
		VariablesQuery: `
(assignment_expression
  left: (variable_name (name) @variable.name)) @variable.def
`,
	})
}
