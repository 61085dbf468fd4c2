package httpapi

import (
	"encoding/json"
	"net/http"
)

// varJSONSize marshals v to estimate its contribution to the context budget.
// Unmarshalable values contribute zero rather than failing the request.
func varJSONSize(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}

// handleContextBudget reports the aggregate size of REPL scratchpad state
// and a rough token estimate (bytes / 4), per spec.md §6.
func (s *Server) handleContextBudget(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	bufferBytes, variableBytes := sess.ReplState.BudgetBytes(varJSONSize)
	totalBytes := bufferBytes + variableBytes
	writeJSON(w, http.StatusOK, map[string]any{
		"buffer_bytes":   bufferBytes,
		"variable_bytes": variableBytes,
		"total_bytes":    totalBytes,
		"approx_tokens":  totalBytes / 4,
	})
}
