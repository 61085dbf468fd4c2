package httpapi

import (
	"net/http"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/repl"
)

type findingRequest struct {
	Point      string  `json:"point"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

type subcallResultResponse struct {
	ChunkID          string           `json:"chunk_id"`
	Query            string           `json:"query"`
	Findings         []findingRequest `json:"findings"`
	SuggestedQueries []string         `json:"suggested_queries,omitempty"`
	AnswerIfComplete string           `json:"answer_if_complete,omitempty"`
	CreatedAt        string           `json:"created_at"`
}

func toSubcallResultResponse(res repl.SubcallResult) subcallResultResponse {
	findings := make([]findingRequest, 0, len(res.Findings))
	for _, f := range res.Findings {
		findings = append(findings, findingRequest{Point: f.Point, Evidence: f.Evidence, Confidence: f.Confidence})
	}
	return subcallResultResponse{
		ChunkID: res.ChunkID, Query: res.Query, Findings: findings,
		SuggestedQueries: res.SuggestedQueries, AnswerIfComplete: res.AnswerIfComplete,
		CreatedAt: res.CreatedAt.Format(timeLayout),
	}
}

func (s *Server) handleSubcallsList(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	results := sess.ReplState.ListSubcallResults()
	out := make([]subcallResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, toSubcallResultResponse(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{"subcall_results": out})
}

type addSubcallRequest struct {
	ChunkID          string           `json:"chunk_id"`
	Query            string           `json:"query"`
	Findings         []findingRequest `json:"findings"`
	SuggestedQueries []string         `json:"suggested_queries"`
	AnswerIfComplete string           `json:"answer_if_complete"`
}

func (s *Server) handleSubcallsAdd(w http.ResponseWriter, r *http.Request) {
	var req addSubcallRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ChunkID == "" {
		writeError(w, apierr.BadRequest("chunk_id is required"))
		return
	}
	findings := make([]repl.Finding, 0, len(req.Findings))
	for _, f := range req.Findings {
		findings = append(findings, repl.Finding{Point: f.Point, Evidence: f.Evidence, Confidence: f.Confidence})
	}
	sess := sessionFrom(r)
	sess.ReplState.AddSubcallResult(repl.SubcallResult{
		ChunkID: req.ChunkID, Query: req.Query, Findings: findings,
		SuggestedQueries: req.SuggestedQueries, AnswerIfComplete: req.AnswerIfComplete,
	})
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleSubcallsClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.ReplState.ClearSubcallResults()
	w.WriteHeader(http.StatusNoContent)
}
