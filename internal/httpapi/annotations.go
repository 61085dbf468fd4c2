package httpapi

import (
	"net/http"

	"github.com/coderlm/coderlm-server/internal/annotations"
)

// handleAnnotationsSave collects every file/symbol annotation currently held
// in the project's indices and persists them under the project root.
func (s *Server) handleAnnotationsSave(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	doc := annotations.Collect(proj.FileTree, proj.SymTab)
	if err := annotations.Save(proj.Root, doc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_definitions":   len(doc.FileDefinitions),
		"file_marks":         len(doc.FileMarks),
		"symbol_definitions": len(doc.SymbolDefinitions),
	})
}

// handleAnnotationsLoad reads the project's saved annotations document, if
// any, and replays it onto the current file tree and symbol table.
func (s *Server) handleAnnotationsLoad(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r)
	doc, err := annotations.Load(proj.Root)
	if err != nil {
		writeError(w, err)
		return
	}
	annotations.Apply(proj.FileTree, proj.SymTab, doc)
	writeJSON(w, http.StatusOK, map[string]any{
		"file_definitions":   len(doc.FileDefinitions),
		"file_marks":         len(doc.FileMarks),
		"symbol_definitions": len(doc.SymbolDefinitions),
	})
}
