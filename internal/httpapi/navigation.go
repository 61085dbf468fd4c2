package httpapi

import (
	"context"
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/chunker"
	"github.com/coderlm/coderlm-server/internal/content"
	"github.com/coderlm/coderlm-server/internal/discover"
	"github.com/coderlm/coderlm-server/internal/filetree"
	"github.com/coderlm/coderlm-server/internal/project"
)

func (s *Server) handlePeek(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	file := r.URL.Query().Get("file")
	start := intQuery(r, "start", 0)
	end := intQuery(r, "end", 1<<30)

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

	result := content.Peek(source, entry.Tag, start, end)
	writeJSON(w, http.StatusOK, map[string]any{
		"lines":       result.Lines,
		"start_line":  result.StartLine,
		"end_line":    result.EndLine,
		"total_lines": result.TotalLines,
		"language":    string(result.Language),
	})
}

type matchResponse struct {
	File   string   `json:"file"`
	Line   int      `json:"line"`
	Text   string   `json:"text"`
	Before []string `json:"before,omitempty"`
	After  []string `json:"after,omitempty"`
}

func (s *Server) handleGrep(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	q := r.URL.Query()

	pattern, err := regexp.Compile(q.Get("pattern"))
	if err != nil {
		writeError(w, apierr.BadRequest("invalid pattern: %v", err))
		return
	}
	scope := q.Get("scope")
	if scope == "" {
		scope = content.ScopeAll
	}
	if scope != content.ScopeAll && scope != content.ScopeCode {
		writeError(w, apierr.BadRequest("invalid scope %q", scope))
		return
	}

	var files []discover.FileInfo
	proj.FileTree.Iter(func(e filetree.Entry) bool {
		files = append(files, discover.FileInfo{
			Path:    filepath.Join(proj.Root, filepath.FromSlash(e.Path)),
			RelPath: e.Path,
			Tag:     e.Tag,
		})
		return true
	})

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.GrepTimeout)
	defer cancel()

	load := grepLoader(s, proj)
	matches, err := content.Grep(ctx, files, load, content.GrepParams{
		Pattern:      pattern,
		MaxMatches:   intQuery(r, "max_matches", 50),
		ContextLines: intQuery(r, "context_lines", 0),
		Scope:        scope,
	})
	if err != nil {
		writeError(w, apierr.Internal("grep", err))
		return
	}

	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchResponse{File: m.File, Line: m.Line, Text: m.Text, Before: m.Before, After: m.After})
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

func grepLoader(s *Server, proj *project.Project) content.SourceLoader {
	return func(ctx context.Context, f discover.FileInfo) ([]byte, error) {
		return s.loadFile(ctx, proj, f.RelPath, f.Tag)
	}
}

type chunkIndexResponse struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s *Server) handleChunkIndices(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	file := r.URL.Query().Get("file")
	size := intQuery(r, "size", 4096)
	overlap := intQuery(r, "overlap", 0)

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

	indices := content.ChunkIndices(source, size, overlap)
	out := make([]chunkIndexResponse, 0, len(indices))
	for _, idx := range indices {
		out = append(out, chunkIndexResponse{Start: idx.Start, End: idx.End})
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": out})
}

type semanticChunkResponse struct {
	Index     int      `json:"index"`
	ByteStart int      `json:"byte_start"`
	ByteEnd   int      `json:"byte_end"`
	LineStart int      `json:"line_start"`
	LineEnd   int      `json:"line_end"`
	Symbols   []string `json:"symbols,omitempty"`
	Preview   string   `json:"preview"`
}

func (s *Server) handleSemanticChunks(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	file := r.URL.Query().Get("file")
	maxChunkBytes := intQuery(r, "max_chunk_bytes", 4096)

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

	chunks := chunker.Chunks(source, proj.SymTab.ListByFile(file), maxChunkBytes)
	out := make([]semanticChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, semanticChunkResponse{
			Index: c.Index, ByteStart: c.ByteStart, ByteEnd: c.ByteEnd,
			LineStart: c.LineStart, LineEnd: c.LineEnd, Symbols: c.Symbols, Preview: c.Preview,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": out})
}
