package httpapi

import "net/http"

// handleHealth reports liveness plus a rough count of open projects and
// sessions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"project_count": len(s.projects.List()),
		"session_count": len(s.sessions.List()),
	})
}

type rootSummary struct {
	Root      string `json:"root"`
	FileCount int    `json:"file_count"`
}

// handleRoots lists every indexed project root.
func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	projects := s.projects.List()
	out := make([]rootSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, rootSummary{Root: p.Root, FileCount: p.FileTree.Len()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"roots": out})
}
