package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/session"
)

type createSessionRequest struct {
	CWD string `json:"cwd"`
}

type sessionResponse struct {
	ID          string `json:"id"`
	ProjectPath string `json:"project_path"`
	CreatedAt   string `json:"created_at"`
	LastActive  string `json:"last_active"`
}

// handleCreateSession resolves cwd to a project (building it on first
// touch), mints a session, and returns its id.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.CWD == "" {
		writeError(w, apierr.BadRequest("cwd is required"))
		return
	}

	proj, err := s.projects.GetOrCreateProject(r.Context(), req.CWD)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := s.sessions.Create(proj.Root)
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.sessions.List()
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.sessions.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSessionResponse(sess *session.Session) sessionResponse {
	return sessionResponse{
		ID:          sess.ID,
		ProjectPath: sess.ProjectPath,
		CreatedAt:   sess.CreatedAt.Format(timeLayout),
		LastActive:  sess.LastActive().Format(timeLayout),
	}
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"
