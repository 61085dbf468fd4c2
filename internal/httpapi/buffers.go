package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/lang"
	"github.com/coderlm/coderlm-server/internal/project"
	"github.com/coderlm/coderlm-server/internal/repl"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

type bufferSourceResponse struct {
	Kind       string `json:"type"`
	Path       string `json:"path,omitempty"`
	StartLine  int    `json:"start_line,omitempty"`
	EndLine    int    `json:"end_line,omitempty"`
	SymbolName string `json:"symbol_name,omitempty"`
	File       string `json:"file,omitempty"`
	Pattern    string `json:"pattern,omitempty"`
	Query      string `json:"query,omitempty"`
}

func toBufferSourceResponse(src repl.BufferSource) bufferSourceResponse {
	return bufferSourceResponse{
		Kind: string(src.Kind), Path: src.Path, StartLine: src.StartLine, EndLine: src.EndLine,
		SymbolName: src.SymbolName, File: src.File, Pattern: src.Pattern, Query: src.Query,
	}
}

type bufferInfoResponse struct {
	Name      string               `json:"name"`
	Size      int                  `json:"size"`
	Source    bufferSourceResponse `json:"source"`
	CreatedAt string               `json:"created_at"`
	Preview   string               `json:"preview"`
}

func toBufferInfoResponse(info repl.BufferInfo) bufferInfoResponse {
	return bufferInfoResponse{
		Name: info.Name, Size: info.Size, Source: toBufferSourceResponse(info.Source),
		CreatedAt: info.CreatedAt.Format(timeLayout), Preview: info.Preview,
	}
}

func (s *Server) handleBuffersList(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	infos := sess.ReplState.BufferList()
	out := make([]bufferInfoResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, toBufferInfoResponse(info))
	}
	writeJSON(w, http.StatusOK, map[string]any{"buffers": out})
}

type createBufferRequest struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

func (s *Server) handleBuffersCreate(w http.ResponseWriter, r *http.Request) {
	var req createBufferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, apierr.BadRequest("name is required"))
		return
	}
	sess := sessionFrom(r)
	b := sess.ReplState.BufferCreate(req.Name, req.Content, req.Description)
	writeJSON(w, http.StatusCreated, toBufferInfoResponse(repl.BufferInfo{
		Name: b.Name, Size: len(b.Content), Source: b.Source, CreatedAt: b.CreatedAt,
	}))
}

func (s *Server) handleBuffersClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	for _, info := range sess.ReplState.BufferList() {
		_ = sess.ReplState.BufferDelete(info.Name)
	}
	w.WriteHeader(http.StatusNoContent)
}

// fileLoaderFor adapts the server's project-scoped file loader to
// repl.FileLoader by resolving the file's language tag from the file tree.
func (s *Server) fileLoaderFor(r *http.Request, proj *project.Project) repl.FileLoader {
	return func(path string) ([]byte, lang.Tag, error) {
		entry, err := proj.FileTree.Get(path)
		if err != nil {
			return nil, "", err
		}
		source, err := s.loadFile(r.Context(), proj, path, entry.Tag)
		if err != nil {
			return nil, "", err
		}
		return source, entry.Tag, nil
	}
}

type bufferFromFileRequest struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (s *Server) handleBufferFromFile(w http.ResponseWriter, r *http.Request) {
	var req bufferFromFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" || req.File == "" {
		writeError(w, apierr.BadRequest("name and file are required"))
		return
	}
	sess := sessionFrom(r)
	proj := projectFrom(r)
	b, err := sess.ReplState.BufferFromFile(req.Name, req.File, req.Start, req.End, s.fileLoaderFor(r, proj))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBufferInfoResponse(repl.BufferInfo{
		Name: b.Name, Size: len(b.Content), Source: b.Source, CreatedAt: b.CreatedAt,
	}))
}

type bufferFromSymbolRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	File   string `json:"file"`
}

func (s *Server) handleBufferFromSymbol(w http.ResponseWriter, r *http.Request) {
	var req bufferFromSymbolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" || req.Symbol == "" || req.File == "" {
		writeError(w, apierr.BadRequest("name, symbol and file are required"))
		return
	}
	sess := sessionFrom(r)
	proj := projectFrom(r)
	lookup := func(file, name string) (symtab.Symbol, bool) { return proj.SymTab.Get(file, name) }
	b, err := sess.ReplState.BufferFromSymbol(req.Name, req.Symbol, req.File, lookup, s.fileLoaderFor(r, proj))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBufferInfoResponse(repl.BufferInfo{
		Name: b.Name, Size: len(b.Content), Source: b.Source, CreatedAt: b.CreatedAt,
	}))
}

func (s *Server) handleBufferPeek(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	start := intQuery(r, "start", 0)
	end := intQuery(r, "end", 1<<30)

	sess := sessionFrom(r)
	content, err := sess.ReplState.BufferPeek(name, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

func (s *Server) handleBufferInfo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sess := sessionFrom(r)
	info, err := sess.ReplState.BufferInfo(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBufferInfoResponse(info))
}

func (s *Server) handleBufferDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sess := sessionFrom(r)
	if err := sess.ReplState.BufferDelete(name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
