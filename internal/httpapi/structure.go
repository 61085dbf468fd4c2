package httpapi

import (
	"net/http"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/filetree"
)

type fileEntryResponse struct {
	Path             string `json:"path"`
	Language         string `json:"language"`
	Definition       string `json:"definition,omitempty"`
	Mark             string `json:"mark,omitempty"`
	SymbolsExtracted bool   `json:"symbols_extracted"`
}

func toFileEntryResponse(e filetree.Entry) fileEntryResponse {
	return fileEntryResponse{
		Path:             e.Path,
		Language:         string(e.Tag),
		Definition:       e.Definition,
		Mark:             e.Mark,
		SymbolsExtracted: e.SymbolsExtracted,
	}
}

// handleStructure lists every indexed file in the session's project.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	var out []fileEntryResponse
	proj.FileTree.Iter(func(e filetree.Entry) bool {
		out = append(out, toFileEntryResponse(e))
		return true
	})
	writeJSON(w, http.StatusOK, map[string]any{"files": out})
}

type annotateFileRequest struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

func (s *Server) handleStructureDefine(w http.ResponseWriter, r *http.Request) {
	s.annotateFile(w, r, func(tree *filetree.Tree, path, value string) error {
		return tree.Define(path, value)
	})
}

func (s *Server) handleStructureRedefine(w http.ResponseWriter, r *http.Request) {
	s.annotateFile(w, r, func(tree *filetree.Tree, path, value string) error {
		return tree.Redefine(path, value)
	})
}

func (s *Server) handleStructureMark(w http.ResponseWriter, r *http.Request) {
	s.annotateFile(w, r, func(tree *filetree.Tree, path, value string) error {
		return tree.Mark(path, value)
	})
}

func (s *Server) annotateFile(w http.ResponseWriter, r *http.Request, apply func(*filetree.Tree, string, string) error) {
	var req annotateFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Path == "" {
		writeError(w, apierr.BadRequest("path is required"))
		return
	}
	proj := projectFrom(r)
	if err := apply(proj.FileTree, req.Path, req.Value); err != nil {
		writeError(w, err)
		return
	}
	e, err := proj.FileTree.Get(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileEntryResponse(e))
}
