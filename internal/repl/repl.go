// Package repl holds per-session scratchpad state: named buffers, JSON
// variables, and an append-only log of subcall results. All three admit
// concurrent readers and writers from the same session.
package repl

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/lang"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

// SourceKind discriminates a Buffer's provenance (spec.md §3 BufferSource).
type SourceKind string

const (
	SourceFile        SourceKind = "file"
	SourceSymbol      SourceKind = "symbol"
	SourceGrep        SourceKind = "grep"
	SourceSubLMResult SourceKind = "sub_lm_result"
	SourceComputed    SourceKind = "computed"
)

// BufferSource is the tagged variant describing how a buffer was produced.
type BufferSource struct {
	Kind SourceKind

	// File
	Path      string
	StartLine int
	EndLine   int

	// Symbol
	SymbolName string
	File       string

	// Grep
	Pattern string

	// SubLmResult
	Query string

	// Computed
	Description string
}

// Buffer is a named, immutable-after-creation scratchpad entry.
type Buffer struct {
	Name      string
	Content   string
	Source    BufferSource
	CreatedAt time.Time
}

// BufferInfo is buffer metadata without its full content, used by listings.
type BufferInfo struct {
	Name      string
	Size      int
	Source    BufferSource
	CreatedAt time.Time
	Preview   string
}

const bufferPreviewBytes = 200

func infoOf(b Buffer) BufferInfo {
	return BufferInfo{
		Name:      b.Name,
		Size:      len(b.Content),
		Source:    b.Source,
		CreatedAt: b.CreatedAt,
		Preview:   clampPreview(b.Content, bufferPreviewBytes),
	}
}

// clampPreview slices s to at most n bytes, pulled back to a valid UTF-8
// character boundary so the preview never splits a multi-byte rune.
func clampPreview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && isContinuation(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

// Finding is one point surfaced by a subcall.
type Finding struct {
	Point      string
	Evidence   string
	Confidence float64
}

// SubcallResult is one recorded sub-LM call outcome.
type SubcallResult struct {
	ChunkID          string
	Query            string
	Findings         []Finding
	SuggestedQueries []string
	AnswerIfComplete string
	CreatedAt        time.Time
}

// FileLoader returns file contents and the file's language tag, used by
// BufferFromFile/BufferFromSymbol so repl stays independent of how a
// project loads source (direct read vs. PDF adapter).
type FileLoader func(path string) ([]byte, lang.Tag, error)

// SymbolLookup resolves a symbol by file and name.
type SymbolLookup func(file, name string) (symtab.Symbol, bool)

// State is the REPL scratchpad for one session.
type State struct {
	buffers   *xsync.MapOf[string, Buffer]
	variables *xsync.MapOf[string, any]

	subcallMu sync.Mutex
	subcalls  []SubcallResult
}

// FinalVariable is the reserved variable name marking session completion.
const FinalVariable = "Final"

// New returns empty REPL state.
func New() *State {
	return &State{
		buffers:   xsync.NewMapOf[string, Buffer](),
		variables: xsync.NewMapOf[string, any](),
	}
}

// BufferCreate replaces any prior buffer of the same name with a Computed
// buffer holding content verbatim.
func (s *State) BufferCreate(name, content, description string) Buffer {
	b := Buffer{
		Name:      name,
		Content:   content,
		Source:    BufferSource{Kind: SourceComputed, Description: description},
		CreatedAt: time.Now(),
	}
	s.buffers.Store(name, b)
	return b
}

// BufferFromFile loads file via load, splits it into lines, slices
// [start, end) clamped to the line count, and stores the joined result.
func (s *State) BufferFromFile(name, file string, start, end int, load FileLoader) (Buffer, error) {
	source, _, err := load(file)
	if err != nil {
		return Buffer{}, err
	}
	lines := splitLines(source)
	total := len(lines)
	start = clampIndex(start, total)
	end = clampIndex(end, total)
	if end < start {
		end = start
	}
	text := strings.Join(lines[start:end], "\n")

	b := Buffer{
		Name:    name,
		Content: text,
		Source: BufferSource{
			Kind: SourceFile, Path: file, StartLine: start, EndLine: end,
		},
		CreatedAt: time.Now(),
	}
	s.buffers.Store(name, b)
	return b, nil
}

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

func clampIndex(i, total int) int {
	if i < 0 {
		return 0
	}
	if i > total {
		return total
	}
	return i
}

// BufferFromSymbol looks up symbolName in file, loads the file's source via
// load, and stores the exact byte slice of the symbol's definition.
func (s *State) BufferFromSymbol(name, symbolName, file string, lookup SymbolLookup, load FileLoader) (Buffer, error) {
	sym, ok := lookup(file, symbolName)
	if !ok {
		return Buffer{}, apierr.NotFound("symbol", file+"::"+symbolName)
	}
	source, _, err := load(file)
	if err != nil {
		return Buffer{}, err
	}
	start := clampIndex(sym.ByteRange.Start, len(source))
	end := clampIndex(sym.ByteRange.End, len(source))
	if end < start {
		end = start
	}

	b := Buffer{
		Name:    name,
		Content: string(source[start:end]),
		Source: BufferSource{
			Kind: SourceSymbol, SymbolName: symbolName, File: file,
		},
		CreatedAt: time.Now(),
	}
	s.buffers.Store(name, b)
	return b, nil
}

// BufferPeek returns the byte slice [start, end) of a buffer's content,
// clamped to its length.
func (s *State) BufferPeek(name string, start, end int) (string, error) {
	b, ok := s.buffers.Load(name)
	if !ok {
		return "", apierr.NotFound("buffer", name)
	}
	total := len(b.Content)
	start = clampIndex(start, total)
	end = clampIndex(end, total)
	if end < start {
		end = start
	}
	return b.Content[start:end], nil
}

// BufferInfo returns metadata (never full content) for a buffer.
func (s *State) BufferInfo(name string) (BufferInfo, error) {
	b, ok := s.buffers.Load(name)
	if !ok {
		return BufferInfo{}, apierr.NotFound("buffer", name)
	}
	return infoOf(b), nil
}

// BufferList returns metadata for every buffer, sorted by name.
func (s *State) BufferList() []BufferInfo {
	var out []BufferInfo
	s.buffers.Range(func(_ string, b Buffer) bool {
		out = append(out, infoOf(b))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BufferDelete removes a buffer. Returns NotFound if absent.
func (s *State) BufferDelete(name string) error {
	_, ok := s.buffers.LoadAndDelete(name)
	if !ok {
		return apierr.NotFound("buffer", name)
	}
	return nil
}

// VarSet stores an arbitrary JSON-encodable value under name.
func (s *State) VarSet(name string, value any) {
	s.variables.Store(name, value)
}

// VarGet returns the value stored under name.
func (s *State) VarGet(name string) (any, error) {
	v, ok := s.variables.Load(name)
	if !ok {
		return nil, apierr.NotFound("variable", name)
	}
	return v, nil
}

// VarList returns every variable name and value.
func (s *State) VarList() map[string]any {
	out := make(map[string]any)
	s.variables.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

// VarDelete removes a variable. Returns NotFound if absent.
func (s *State) VarDelete(name string) error {
	_, ok := s.variables.LoadAndDelete(name)
	if !ok {
		return apierr.NotFound("variable", name)
	}
	return nil
}

// CheckFinal returns the value of the reserved Final variable, if present.
func (s *State) CheckFinal() (any, bool) {
	v, ok := s.variables.Load(FinalVariable)
	return v, ok
}

// AddSubcallResult appends r to the session's subcall log.
func (s *State) AddSubcallResult(r SubcallResult) {
	r.CreatedAt = time.Now()
	s.subcallMu.Lock()
	defer s.subcallMu.Unlock()
	s.subcalls = append(s.subcalls, r)
}

// ListSubcallResults returns a snapshot clone of the subcall log.
func (s *State) ListSubcallResults() []SubcallResult {
	s.subcallMu.Lock()
	defer s.subcallMu.Unlock()
	out := make([]SubcallResult, len(s.subcalls))
	copy(out, s.subcalls)
	return out
}

// ClearSubcallResults empties the subcall log.
func (s *State) ClearSubcallResults() {
	s.subcallMu.Lock()
	defer s.subcallMu.Unlock()
	s.subcalls = nil
}

// BudgetBytes returns the aggregate byte size of every buffer plus the
// marshaled size of every variable — the basis for the context-budget
// endpoint's rough token estimate.
func (s *State) BudgetBytes(varJSONSize func(any) int) (bufferBytes, variableBytes int) {
	s.buffers.Range(func(_ string, b Buffer) bool {
		bufferBytes += len(b.Content)
		return true
	})
	s.variables.Range(func(_ string, v any) bool {
		variableBytes += varJSONSize(v)
		return true
	})
	return
}
