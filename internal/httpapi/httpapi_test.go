package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/config"
	"github.com/coderlm/coderlm-server/internal/repl"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	src := "package sample\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "sample.go"), []byte(src), 0o644))

	cfg := config.Default()
	cfg.MaxProjects = 4
	return NewServer(cfg), root
}

func doJSON(t *testing.T, srv *Server, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, srv *Server, root string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", "", createSessionRequest{CWD: root})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestCreateSessionIndexesProject(t *testing.T) {
	srv, root := newTestServer(t)
	id := createSession(t, srv, root)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/structure", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Files []fileEntryResponse `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Files, 1)
	require.Equal(t, "sample.go", out.Files[0].Path)
}

func TestSymbolsListFindsExtractedFunction(t *testing.T) {
	srv, root := newTestServer(t)
	id := createSession(t, srv, root)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/symbols?file=sample.go", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Symbols []symbolResponse `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Symbols, 1)
	require.Equal(t, "Add", out.Symbols[0].Name)
}

func TestSymbolsImplementationMissingSymbolIsNotFound(t *testing.T) {
	srv, root := newTestServer(t)
	id := createSession(t, srv, root)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/symbols/implementation?symbol=bar&file=ghost.x", id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPeekReturnsRequestedLineRange(t *testing.T) {
	srv, root := newTestServer(t)
	id := createSession(t, srv, root)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/peek?file=sample.go&start=0&end=2", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Lines []string `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, []string{"package sample", ""}, out.Lines)
}

func TestBufferFromFileThenPeek(t *testing.T) {
	srv, root := newTestServer(t)
	id := createSession(t, srv, root)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/buffers/from-file", id, bufferFromFileRequest{
		Name: "b1", File: "sample.go", Start: 0, End: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/buffers/b1/peek?start=0&end=14", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "package sample", out.Content)
}

func TestVarsSetFinalAndHistoryCompact(t *testing.T) {
	srv, root := newTestServer(t)
	id := createSession(t, srv, root)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/structure", id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/vars", id, setVarRequest{Name: repl.FinalVariable, Value: "done"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/vars/final", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var final struct {
		Final bool   `json:"final"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &final))
	require.True(t, final.Final)
	require.Equal(t, "done", final.Value)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/history/compact", id, compactRequest{KeepRecent: 1})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAnnotationsSaveThenLoadRoundTrips(t *testing.T) {
	srv, root := newTestServer(t)
	id := createSession(t, srv, root)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/symbols/define", id, annotateSymbolRequest{
		File: "sample.go", Name: "Add", Definition: "adds two ints",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/annotations/save", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/annotations/load", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/symbols?file=sample.go", id, nil)
	var out struct {
		Symbols []symbolResponse `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "adds two ints", out.Symbols[0].Definition)
}

func TestMissingSessionHeaderIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/structure", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
