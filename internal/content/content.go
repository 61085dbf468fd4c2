// Package content implements the read-only navigation operations served
// directly off the in-memory file tree: line-range peeking, overlapping byte
// chunking, and a regex grep that fans out across every indexed file.
package content

import (
	"context"
	"log/slog"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/coderlm/coderlm-server/internal/discover"
	"github.com/coderlm/coderlm-server/internal/lang"
	"github.com/coderlm/coderlm-server/internal/parser"
)

// SourceLoader returns the bytes to scan for a file, the same shape the
// extractor uses so callers can share one implementation (a plain
// filesystem read, or the PDF adapter for Pdf-tagged entries).
type SourceLoader func(ctx context.Context, f discover.FileInfo) ([]byte, error)

// PeekResult is the response to a line-range peek.
type PeekResult struct {
	Lines      []string
	StartLine  int
	EndLine    int
	TotalLines int
	Language   lang.Tag
}

// Peek returns lines [start, end) of source (0-indexed, both clamped to the
// line count), along with the total line count and the file's language tag.
func Peek(source []byte, tag lang.Tag, start, end int) PeekResult {
	lines := splitLines(source)
	total := len(lines)

	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}

	return PeekResult{
		Lines:      append([]string(nil), lines[start:end]...),
		StartLine:  start,
		EndLine:    end,
		TotalLines: total,
		Language:   tag,
	}
}

// splitLines splits source on "\n" without counting a single trailing
// newline as an extra empty line.
func splitLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(source), "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// ChunkIndex is a half-open byte range [Start, End) into a file's source.
type ChunkIndex struct {
	Start int
	End   int
}

// ChunkIndices divides source into fixed-size byte windows with overlap.
// Windows advance by size-overlap; the last window is truncated at EOF;
// window boundaries are pushed forward to the next UTF-8 character boundary
// so no window splits a multi-byte code point.
func ChunkIndices(source []byte, size, overlap int) []ChunkIndex {
	n := len(source)
	if size <= 0 || n == 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	var out []ChunkIndex
	start := 0
	for start < n {
		end := start + size
		if end > n {
			end = n
		} else {
			end = nextCharBoundary(source, end)
			if end > n {
				end = n
			}
		}
		out = append(out, ChunkIndex{Start: start, End: end})
		if end >= n {
			break
		}

		next := nextCharBoundary(source, start+step)
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func nextCharBoundary(source []byte, idx int) int {
	for idx < len(source) && isUTF8Continuation(source[idx]) {
		idx++
	}
	return idx
}

func isUTF8Continuation(b byte) bool {
	return b&0xC0 == 0x80
}

// Grep scope values.
const (
	ScopeAll  = "all"
	ScopeCode = "code"
)

// GrepParams configures a Grep call.
type GrepParams struct {
	Pattern      *regexp.Regexp
	MaxMatches   int
	ContextLines int
	Scope        string
}

// Match is one grep hit.
type Match struct {
	File   string
	Line   int
	Text   string
	Before []string
	After  []string
}

// Grep scans files for Pattern, returning up to MaxMatches hits across all
// of them combined. It fans out across files on an errgroup-bounded worker
// pool, the same shape the extractor uses, so a single grep call never
// blocks the request scheduler.
func Grep(ctx context.Context, files []discover.FileInfo, load SourceLoader, p GrepParams) ([]Match, error) {
	if p.MaxMatches <= 0 || p.Pattern == nil || len(files) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	var matches []Match

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
			mu.Lock()
			full := len(matches) >= p.MaxMatches
			mu.Unlock()
			if full {
				return nil
			}

			source, err := load(gctx, f)
			if err != nil {
				slog.Warn("content.grep_load", "path", f.RelPath, "err", err)
				return nil
			}

			var skip func(bytePos int) bool
			if p.Scope == ScopeCode {
				skip, err = codeScopeFilter(f.Tag, source)
				if err != nil {
					slog.Warn("content.grep_scope", "path", f.RelPath, "err", err)
				}
			}

			found := grepFile(f.RelPath, source, p, skip)
			if len(found) == 0 {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, m := range found {
				if len(matches) >= p.MaxMatches {
					break
				}
				matches = append(matches, m)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

func grepFile(relPath string, source []byte, p GrepParams, skip func(int) bool) []Match {
	lines := strings.Split(strings.TrimSuffix(string(source), "\n"), "\n")

	lineStart := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		lineStart[i] = offset
		offset += len(line) + 1
	}

	var out []Match
	for i, line := range lines {
		if len(out) >= p.MaxMatches {
			break
		}
		loc := p.Pattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if skip != nil && skip(lineStart[i]+loc[0]) {
			continue
		}

		m := Match{File: relPath, Line: i + 1, Text: line}
		if p.ContextLines > 0 {
			m.Before = contextWindow(lines, i-p.ContextLines, i)
			m.After = contextWindow(lines, i+1, i+1+p.ContextLines)
		}
		out = append(out, m)
	}
	return out
}

func contextWindow(lines []string, start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return append([]string(nil), lines[start:end]...)
}

// codeScopeFilter re-parses source and returns a predicate reporting
// whether a byte offset falls inside a comment or string-literal node. Node
// kinds are matched by substring ("comment", "string") since tree-sitter
// grammars name these nodes consistently across languages without sharing a
// common supertype.
func codeScopeFilter(tag lang.Tag, source []byte) (func(int) bool, error) {
	if !lang.HasQueries(tag) {
		return nil, nil
	}
	tree, err := parser.Parse(tag, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var ranges [][2]int
	parser.Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		if strings.Contains(kind, "comment") || strings.Contains(kind, "string") {
			ranges = append(ranges, [2]int{int(n.StartByte()), int(n.EndByte())})
			return false
		}
		return true
	})

	if len(ranges) == 0 {
		return nil, nil
	}
	return func(pos int) bool {
		for _, r := range ranges {
			if pos >= r[0] && pos < r[1] {
				return true
			}
		}
		return false
	}, nil
}

// VariableRef is one variable binding found by Variables. Which bindings are
// captured (package-level, function-local, or both) depends on the
// language's variables query.
type VariableRef struct {
	Name string
	Line int
}

// Variables runs the language's variables query against source and returns
// every distinct (name, line) binding it captures. It is invoked on demand
// by the /symbols/variables endpoint rather than during project-wide
// extraction, which only runs the symbols and callers queries.
func Variables(tag lang.Tag, source []byte) ([]VariableRef, error) {
	query, err := parser.VariablesQuery(tag)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, nil
	}
	tree, err := parser.Parse(tag, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	names := query.CaptureNames()
	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	captures := cursor.Captures(query, tree.RootNode(), source)
	seen := map[string]bool{}
	var out []VariableRef
	for {
		match, capIdx := captures.Next()
		if match == nil {
			break
		}
		cap := match.Captures[capIdx]
		if int(cap.Index) >= len(names) || names[cap.Index] != "variable.name" {
			continue
		}
		node := cap.Node
		name := parser.NodeText(&node, source)
		if name == "" {
			continue
		}
		line := int(node.StartPosition().Row) + 1
		key := name + "\x00" + strconv.Itoa(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, VariableRef{Name: name, Line: line})
	}
	return out, nil
}
