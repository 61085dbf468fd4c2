// Package lang is the process-wide registry of recognized languages: for
// each tag, the tree-sitter grammar handle and three query sources: symbols
// and callers, run by the extractor, and variables, run on demand by
// content.Variables. The registry is built by
// per-language init() functions and is immutable once the process starts.
package lang

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Tag identifies a syntactic family. It is a closed enumeration; an
// unrecognized tag is treated as plain text (no symbol extraction).
type Tag string

const (
	Go         Tag = "go"
	Python     Tag = "python"
	JavaScript Tag = "javascript"
	TypeScript Tag = "typescript"
	TSX        Tag = "tsx"
	Rust       Tag = "rust"
	Java       Tag = "java"
	C          Tag = "c"
	CPP        Tag = "cpp"
	CSharp     Tag = "csharp"
	PHP        Tag = "php"
	Ruby       Tag = "ruby"
	Lua        Tag = "lua"
	Bash       Tag = "bash"
	Scala      Tag = "scala"
	Kotlin     Tag = "kotlin"

	// Pdf is unusual: its queries run against the markdown grammar, but its
	// source text comes from the PDF adapter, not a direct file read.
	Pdf Tag = "pdf"

	// PlainText marks files with no tree-sitter support. Operations silently
	// skip extraction for these files.
	PlainText Tag = "plaintext"
)

// Spec holds everything the extractor needs for one language tag.
type Spec struct {
	Tag            Tag
	Extensions     []string
	Grammar        func() *tree_sitter.Language
	SymbolsQuery   string
	CallersQuery   string
	VariablesQuery string
}

var (
	registry = map[Tag]*Spec{}
	byExt    = map[string]Tag{}
)

// Register adds a Spec to the global registry. Called from per-language
// init() functions; never called after process start.
func Register(spec *Spec) {
	registry[spec.Tag] = spec
	for _, ext := range spec.Extensions {
		byExt[ext] = spec.Tag
	}
}

// ForTag returns the Spec for a tag, or nil if the tag has no tree-sitter
// support (opaque/plain-text).
func ForTag(t Tag) *Spec {
	return registry[t]
}

// TagForExtension returns the Tag registered for a file extension (e.g.
// ".go"), or (PlainText, false) if none is registered.
func TagForExtension(ext string) (Tag, bool) {
	t, ok := byExt[ext]
	if !ok {
		return PlainText, false
	}
	return t, true
}

// HasQueries reports whether a tag has tree-sitter support (as opposed to
// being treated as opaque text).
func HasQueries(t Tag) bool {
	return registry[t] != nil
}

// AllTags returns every registered tag. Ordering is not guaranteed, but the
// set is stable for an unchanging registry.
func AllTags() []Tag {
	tags := make([]Tag, 0, len(registry))
	for t := range registry {
		tags = append(tags, t)
	}
	return tags
}
