// Package extractor runs the two-phase parallel tree-sitter pipeline that
// populates a project's file tree and symbol table: phase 1 extracts symbol
// definitions, phase 2 extracts the reverse call graph. Both phases fan out
// across files on an errgroup-bounded worker pool so a single project index
// never blocks the request scheduler.
package extractor

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/coderlm/coderlm-server/internal/discover"
	"github.com/coderlm/coderlm-server/internal/filetree"
	"github.com/coderlm/coderlm-server/internal/lang"
	"github.com/coderlm/coderlm-server/internal/parser"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

// SourceLoader returns the bytes to parse for a file. PDF files are routed
// through the PDF adapter by the caller's implementation; everything else is
// a plain filesystem read.
type SourceLoader func(ctx context.Context, f discover.FileInfo) ([]byte, error)

// Run executes both extraction phases for files, inserting results into tab
// and marking tree entries as extracted. It is idempotent at whole-project
// granularity: re-running overwrites existing per-key records but does not
// reconcile deletions of files no longer present.
func Run(ctx context.Context, files []discover.FileInfo, tree *filetree.Tree, tab *symtab.Table, load SourceLoader) error {
	var supported []discover.FileInfo
	for _, f := range files {
		if lang.HasQueries(f.Tag) {
			supported = append(supported, f)
		}
	}
	if len(supported) == 0 {
		return nil
	}

	if err := runPhase(ctx, supported, func(f discover.FileInfo, source []byte, root *tree_sitter.Node) error {
		extractSymbols(f, source, root, tab)
		if err := tree.SetExtracted(f.RelPath); err != nil {
			slog.Warn("extractor.mark_extracted", "path", f.RelPath, "err", err)
		}
		return nil
	}, load); err != nil {
		return err
	}

	return runPhase(ctx, supported, func(f discover.FileInfo, source []byte, root *tree_sitter.Node) error {
		extractCallers(f, source, root, tab)
		return nil
	}, load)
}

// runPhase parses each file once and invokes visit with its AST, bounded by
// a worker pool sized to the CPU count. Parse failures and decoding failures
// degrade to a warning for that file; they never fail the whole pass.
func runPhase(ctx context.Context, files []discover.FileInfo, visit func(discover.FileInfo, []byte, *tree_sitter.Node) error, load SourceLoader) error {
	g, gctx := errgroup.WithContext(ctx)
	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	g.SetLimit(workers)

	for _, f := range files {
		f := f
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			source, err := load(gctx, f)
			if err != nil {
				slog.Warn("extractor.load", "path", f.RelPath, "err", err)
				return nil
			}
			tree, err := parser.Parse(f.Tag, source)
			if err != nil {
				slog.Warn("extractor.parse", "path", f.RelPath, "tag", f.Tag, "err", err)
				return nil
			}
			defer tree.Close()
			return visit(f, source, tree.RootNode())
		})
	}
	return g.Wait()
}

type captureGroup map[string]tree_sitter.Node

func runQuery(query *tree_sitter.Query, root *tree_sitter.Node, source []byte, emit func(captureGroup)) {
	if query == nil {
		return
	}
	names := query.CaptureNames()
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, source)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		if !match.SatisfiesTextPredicate(query, nil, nil, source) {
			continue
		}
		group := captureGroup{}
		for _, cap := range match.Captures {
			if int(cap.Index) >= len(names) {
				continue
			}
			group[names[cap.Index]] = cap.Node
		}
		emit(group)
	}
}

// extractSymbols runs the symbols query and inserts every fully-captured
// definition. impl.type persists across matches in query order so languages
// whose grammar captures it outside the method's own match still populate
// Parent correctly.
func extractSymbols(f discover.FileInfo, source []byte, root *tree_sitter.Node, tab *symtab.Table) {
	spec := lang.ForTag(f.Tag)
	if spec == nil {
		return
	}
	query, err := parser.SymbolsQuery(f.Tag)
	if err != nil || query == nil {
		if err != nil {
			slog.Warn("extractor.symbols_query", "tag", f.Tag, "err", err)
		}
		return
	}

	var currentImplType string

	runQuery(query, root, source, func(group captureGroup) {
		if implType, ok := group["impl.type"]; ok {
			currentImplType = nodeText(implType, source)
		}

		kind, nameNode, defNode, ok := resolveSymbolCapture(group)
		if !ok {
			return
		}

		name := nodeText(nameNode, source)
		if name == "" {
			return
		}

		parent := ""
		if kind == symtab.Method {
			parent = currentImplType
		}

		sig := firstLine(nodeText(defNode, source))
		start := defNode.StartPosition()
		end := defNode.EndPosition()

		tab.Insert(symtab.Symbol{
			Name:      name,
			Kind:      kind,
			File:      f.RelPath,
			ByteRange: symtab.ByteRange{Start: int(defNode.StartByte()), End: int(defNode.EndByte())},
			LineRange: symtab.LineRange{Start: int(start.Row) + 1, End: int(end.Row) + 1},
			Language:  f.Tag,
			Signature: sig,
			Parent:    parent,
		})
	})
}

var captureKinds = map[string]symtab.Kind{
	"function":  symtab.Function,
	"method":    symtab.Method,
	"struct":    symtab.Struct,
	"enum":      symtab.Enum,
	"trait":     symtab.Trait,
	"class":     symtab.Class,
	"interface": symtab.Interface,
	"type":      symtab.Type,
	"constant":  symtab.Constant,
	"module":    symtab.Module,
}

// resolveSymbolCapture finds the single kind whose name and def captures are
// both present in the group. A symbol is emitted only when both halves of
// the same kind were captured in this match.
func resolveSymbolCapture(group captureGroup) (symtab.Kind, tree_sitter.Node, tree_sitter.Node, bool) {
	for prefix, kind := range captureKinds {
		nameNode, hasName := group[prefix+".name"]
		defNode, hasDef := group[prefix+".def"]
		if hasName && hasDef {
			return kind, nameNode, defNode, true
		}
	}
	return "", tree_sitter.Node{}, tree_sitter.Node{}, false
}

// extractCallers runs the callers query and records each @callee capture.
func extractCallers(f discover.FileInfo, source []byte, root *tree_sitter.Node, tab *symtab.Table) {
	query, err := parser.CallersQuery(f.Tag)
	if err != nil || query == nil {
		if err != nil {
			slog.Warn("extractor.callers_query", "tag", f.Tag, "err", err)
		}
		return
	}

	lines := strings.Split(string(source), "\n")

	runQuery(query, root, source, func(group captureGroup) {
		node, ok := group["callee"]
		if !ok {
			return
		}
		name := nodeText(node, source)
		if name == "" {
			return
		}
		row := int(node.StartPosition().Row)
		line := row + 1
		text := ""
		if row < len(lines) {
			text = strings.TrimSpace(lines[row])
		}
		tab.AddCaller(name, f.RelPath, line, text)
	})
}

func nodeText(n tree_sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
