package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

func init() {
	Register(&Spec{
		Tag:        TypeScript,
		Extensions: []string{".ts", ".mts", ".cts"},
		Grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		},
		SymbolsQuery:   typescriptSymbolsQuery,
		CallersQuery:   typescriptCallersQuery,
		VariablesQuery: typescriptVariablesQuery,
	})

	Register(&Spec{
		Tag:        TSX,
		Extensions: []string{".tsx"},
		Grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		},
		SymbolsQuery:   typescriptSymbolsQuery,
		CallersQuery:   typescriptCallersQuery,
		VariablesQuery: typescriptVariablesQuery,
	})
}

const typescriptSymbolsQuery = `
(class_declaration
  name: (type_identifier) @impl.type
  body: (class_body
    (method_definition
      name: (property_identifier) @method.name) @method.def))

(function_declaration
  name: (identifier) @function.name) @function.def

(interface_declaration
  name: (type_identifier) @interface.name) @interface.def

(class_declaration
  name: (type_identifier) @class.name) @class.def

(type_alias_declaration
  name: (type_identifier) @type.name) @type.def

(enum_declaration
  name: (identifier) @enum.name) @enum.def

(lexical_declaration
  "const"
  (variable_declarator
    name: (identifier) @constant.name
    (#match? @constant.name "^[A-Z][A-Z0-9_]*$"))) @constant.def
`

const typescriptCallersQuery = `
(call_expression
  function: (identifier) @callee)

(call_expression
  function: (member_expression
    property: (property_identifier) @callee))
`

const typescriptVariablesQuery = `
(variable_declarator
  name: (identifier) @variable.name) @variable.def
`
