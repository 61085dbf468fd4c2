package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coderlm/coderlm-server/internal/apierr"
)

func (s *Server) handleVarsList(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, map[string]any{"variables": sess.ReplState.VarList()})
}

type setVarRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (s *Server) handleVarsSet(w http.ResponseWriter, r *http.Request) {
	var req setVarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, apierr.BadRequest("name is required"))
		return
	}
	sess := sessionFrom(r)
	sess.ReplState.VarSet(req.Name, req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"name": req.Name, "value": req.Value})
}

func (s *Server) handleVarsClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	for name := range sess.ReplState.VarList() {
		_ = sess.ReplState.VarDelete(name)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVarsFinal reports whether the reserved Final variable has been set,
// and its value if so — the REPL's session-completion signal.
func (s *Server) handleVarsFinal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	v, ok := sess.ReplState.CheckFinal()
	writeJSON(w, http.StatusOK, map[string]any{"final": ok, "value": v})
}

func (s *Server) handleVarGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sess := sessionFrom(r)
	v, err := sess.ReplState.VarGet(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "value": v})
}

func (s *Server) handleVarDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sess := sessionFrom(r)
	if err := sess.ReplState.VarDelete(name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
