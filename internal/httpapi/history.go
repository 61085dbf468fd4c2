package httpapi

import "net/http"

type historyEntryResponse struct {
	Timestamp       string `json:"timestamp"`
	Method          string `json:"method"`
	Path            string `json:"path"`
	ResponsePreview string `json:"response_preview"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	entries := sess.History()
	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResponse{
			Timestamp: e.Timestamp.Format(timeLayout), Method: e.Method,
			Path: e.Path, ResponsePreview: e.ResponsePreview,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": out})
}

type compactRequest struct {
	KeepRecent int `json:"keep_recent"`
}

func (s *Server) handleHistoryCompact(w http.ResponseWriter, r *http.Request) {
	var req compactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := sessionFrom(r)
	res := sess.CompactHistory(req.KeepRecent)
	writeJSON(w, http.StatusOK, map[string]any{
		"original_count":  res.OriginalCount,
		"compacted_count": res.CompactedCount,
		"removed":         res.Removed,
	})
}
