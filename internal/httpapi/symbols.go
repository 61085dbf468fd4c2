package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/content"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

type symbolResponse struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	File       string `json:"file"`
	ByteStart  int    `json:"byte_start"`
	ByteEnd    int    `json:"byte_end"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
	Language   string `json:"language"`
	Signature  string `json:"signature"`
	Definition string `json:"definition,omitempty"`
	Parent     string `json:"parent,omitempty"`
}

func toSymbolResponse(sym symtab.Symbol) symbolResponse {
	return symbolResponse{
		Name:       sym.Name,
		Kind:       string(sym.Kind),
		File:       sym.File,
		ByteStart:  sym.ByteRange.Start,
		ByteEnd:    sym.ByteRange.End,
		LineStart:  sym.LineRange.Start,
		LineEnd:    sym.LineRange.End,
		Language:   string(sym.Language),
		Signature:  sym.Signature,
		Definition: sym.Definition,
		Parent:     sym.Parent,
	}
}

func intQuery(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// handleSymbolsList lists symbols, optionally filtered to a single file,
// bounded by limit.
func (s *Server) handleSymbolsList(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	limit := intQuery(r, "limit", 1000)
	file := r.URL.Query().Get("file")

	var symbols []symtab.Symbol
	if file != "" {
		symbols = proj.SymTab.ListByFile(file)
		if limit > 0 && len(symbols) > limit {
			symbols = symbols[:limit]
		}
	} else {
		symbols = proj.SymTab.All(limit)
	}

	out := make([]symbolResponse, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, toSymbolResponse(sym))
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbols": out})
}

func (s *Server) handleSymbolsSearch(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	q := r.URL.Query().Get("q")
	limit := intQuery(r, "limit", 100)

	symbols := proj.SymTab.Search(q, limit)
	out := make([]symbolResponse, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, toSymbolResponse(sym))
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbols": out})
}

// handleSymbolsImplementation resolves the exact definition of symbol within
// file. NotFound is the resolution of spec.md §8 scenario 6.
func (s *Server) handleSymbolsImplementation(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	name := r.URL.Query().Get("symbol")
	file := r.URL.Query().Get("file")

	sym, ok := proj.SymTab.Get(file, name)
	if !ok {
		writeError(w, apierr.NotFound("symbol", file+"::"+name))
		return
	}
	writeJSON(w, http.StatusOK, toSymbolResponse(sym))
}

// handleSymbolsTests lists symbols in file whose name looks test-related
// (contains "test", case-insensitive) — the practical reading of "tests"
// for a language-agnostic symbol table with no test-framework awareness.
func (s *Server) handleSymbolsTests(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	file := r.URL.Query().Get("file")

	var out []symbolResponse
	for _, sym := range proj.SymTab.ListByFile(file) {
		if strings.Contains(strings.ToLower(sym.Name), "test") {
			out = append(out, toSymbolResponse(sym))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbols": out})
}

type callerResponse struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

func (s *Server) handleSymbolsCallers(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	name := r.URL.Query().Get("symbol")

	refs, ok := proj.SymTab.GetCallers(name)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"callers": []callerResponse{}})
		return
	}
	out := make([]callerResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, callerResponse{File: ref.File, Line: ref.Line, Text: ref.Text})
	}
	writeJSON(w, http.StatusOK, map[string]any{"callers": out})
}

type variableResponse struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

func (s *Server) handleSymbolsVariables(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	file := r.URL.Query().Get("file")

	entry, err := proj.FileTree.Get(file)
	if err != nil {
		writeError(w, err)
		return
	}

	source, err := s.loadFile(r.Context(), proj, file, entry.Tag)
	if err != nil {
		writeError(w, err)
		return
	}

	refs, err := content.Variables(entry.Tag, source)
	if err != nil {
		writeError(w, apierr.Internal("symbols variables", err))
		return
	}
	out := make([]variableResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, variableResponse{Name: ref.Name, Line: ref.Line})
	}
	writeJSON(w, http.StatusOK, map[string]any{"variables": out})
}

type annotateSymbolRequest struct {
	File       string `json:"file"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

func (s *Server) handleSymbolsDefine(w http.ResponseWriter, r *http.Request) {
	s.annotateSymbol(w, r, func(tab *symtab.Table, file, name, def string) error {
		return tab.Define(file, name, def)
	})
}

func (s *Server) handleSymbolsRedefine(w http.ResponseWriter, r *http.Request) {
	s.annotateSymbol(w, r, func(tab *symtab.Table, file, name, def string) error {
		return tab.Redefine(file, name, def)
	})
}

func (s *Server) annotateSymbol(w http.ResponseWriter, r *http.Request, apply func(*symtab.Table, string, string, string) error) {
	var req annotateSymbolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.File == "" || req.Name == "" {
		writeError(w, apierr.BadRequest("file and name are required"))
		return
	}
	proj := projectFrom(r)
	if err := apply(proj.SymTab, req.File, req.Name, req.Definition); err != nil {
		writeError(w, err)
		return
	}
	sym, _ := proj.SymTab.Get(req.File, req.Name)
	writeJSON(w, http.StatusOK, toSymbolResponse(sym))
}
