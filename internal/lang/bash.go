package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_bash "github.com/tree-sitter/tree-sitter-bash/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        Bash,
		Extensions: []string{".sh", ".bash"},
		Grammar:    func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_bash.Language()) },
		SymbolsQuery: `
(function_definition
  name: (word) @function.name) @function.def
`,
		CallersQuery: `
(command
  name: (command_name (word) @callee))
`,
		VariablesQuery: `
(variable_assignment
  name: (variable_name) @variable.name) @variable.def
`,
	})
}
