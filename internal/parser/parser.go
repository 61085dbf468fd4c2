// Package parser wraps tree-sitter parsing and query compilation behind a
// per-language cache. Parsers are pooled with sync.Pool; compiled queries are
// compiled once per tag and reused for the life of the process.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderlm/coderlm-server/internal/lang"
)

type compiledQueries struct {
	symbols   *tree_sitter.Query
	callers   *tree_sitter.Query
	variables *tree_sitter.Query
}

var (
	mu          sync.Mutex
	tsLanguages = map[lang.Tag]*tree_sitter.Language{}
	parserPools = map[lang.Tag]*sync.Pool{}
	queryCache  = map[lang.Tag]*compiledQueries{}
)

func languageFor(t lang.Tag) (*tree_sitter.Language, error) {
	mu.Lock()
	defer mu.Unlock()

	if existing, ok := tsLanguages[t]; ok {
		return existing, nil
	}
	spec := lang.ForTag(t)
	if spec == nil || spec.Grammar == nil {
		return nil, fmt.Errorf("parser: no grammar registered for %s", t)
	}
	tsLang := spec.Grammar()
	tsLanguages[t] = tsLang
	parserPools[t] = &sync.Pool{
		New: func() any {
			p := tree_sitter.NewParser()
			if err := p.SetLanguage(tsLang); err != nil {
				panic(fmt.Sprintf("parser: set language %s: %v", t, err))
			}
			return p
		},
	}
	return tsLang, nil
}

// Parse parses source bytes into a tree-sitter AST for the given tag. The
// caller must call tree.Close() when done. Parsers are pooled per tag to
// avoid per-file allocation.
func Parse(t lang.Tag, source []byte) (*tree_sitter.Tree, error) {
	if _, err := languageFor(t); err != nil {
		return nil, err
	}

	mu.Lock()
	pool := parserPools[t]
	mu.Unlock()

	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("parser: failed to acquire parser for %s", t)
	}
	defer pool.Put(p)

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser: parse failed for %s", t)
	}
	return tree, nil
}

func compile(tsLang *tree_sitter.Language, source string) (*tree_sitter.Query, error) {
	if source == "" {
		return nil, nil
	}
	q, err := tree_sitter.NewQuery(tsLang, source)
	if err != nil {
		return nil, fmt.Errorf("parser: compile query: %w", err)
	}
	return q, nil
}

func queriesFor(t lang.Tag) (*compiledQueries, error) {
	mu.Lock()
	if cached, ok := queryCache[t]; ok {
		mu.Unlock()
		return cached, nil
	}
	mu.Unlock()

	tsLang, err := languageFor(t)
	if err != nil {
		return nil, err
	}
	spec := lang.ForTag(t)

	symbols, err := compile(tsLang, spec.SymbolsQuery)
	if err != nil {
		return nil, err
	}
	callers, err := compile(tsLang, spec.CallersQuery)
	if err != nil {
		return nil, err
	}
	variables, err := compile(tsLang, spec.VariablesQuery)
	if err != nil {
		return nil, err
	}

	built := &compiledQueries{symbols: symbols, callers: callers, variables: variables}

	mu.Lock()
	defer mu.Unlock()
	if cached, ok := queryCache[t]; ok {
		return cached, nil
	}
	queryCache[t] = built
	return built, nil
}

// SymbolsQuery returns the compiled symbols query for a tag, or nil if the
// language defines none.
func SymbolsQuery(t lang.Tag) (*tree_sitter.Query, error) {
	qs, err := queriesFor(t)
	if err != nil {
		return nil, err
	}
	return qs.symbols, nil
}

// CallersQuery returns the compiled callers query for a tag, or nil if the
// language defines none.
func CallersQuery(t lang.Tag) (*tree_sitter.Query, error) {
	qs, err := queriesFor(t)
	if err != nil {
		return nil, err
	}
	return qs.callers, nil
}

// VariablesQuery returns the compiled variables query for a tag, or nil if
// the language defines none.
func VariablesQuery(t lang.Tag) (*tree_sitter.Query, error) {
	qs, err := queriesFor(t)
	if err != nil {
		return nil, err
	}
	return qs.variables, nil
}

// WalkFunc is called for each node during AST traversal. Return false to
// skip the node's children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the source slice covered by a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
