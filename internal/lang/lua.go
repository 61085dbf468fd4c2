package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_lua "github.com/tree-sitter-grammars/tree-sitter-lua/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Lua,
		Extensions: []string{".lua"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_lua.Language()) },
		SymbolsQuery: `
(function_declaration
  name: (dot_index_expression
    table: (identifier) @impl.type
    field: (identifier) @method.name)) @method.def

(function_declaration
  name: (identifier) @function.name) @function.def

(local_function
  name: (identifier) @function.name) @function.def

(variable_declaration
  (assignment_statement
    (variable_list
      name: (identifier) @constant.name
      (#match? @constant.name "^[A-Z][A-Z0-9_]*$")))) @constant.def
`,
		CallersQuery: `
(function_call
  name: (identifier) @callee)

(function_call
  name: (dot_index_expression
    field: (identifier) @callee))
`,
		VariablesQuery: `
(variable_declaration
  (assignment_statement
    (variable_list
      name: (identifier) @variable.name))) @variable.def
`,
	})
}
