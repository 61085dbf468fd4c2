// Package httpapi is the HTTP transport over the code-intelligence core: it
// implements the route table of spec.md §6 with gorilla/mux, resolving the
// X-Session-Id header to a bound session and project before dispatching into
// internal/session, internal/project, internal/symtab, internal/content,
// internal/chunker, internal/repl, internal/history, and
// internal/annotations.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/config"
	"github.com/coderlm/coderlm-server/internal/discover"
	"github.com/coderlm/coderlm-server/internal/lang"
	"github.com/coderlm/coderlm-server/internal/pdfadapter"
	"github.com/coderlm/coderlm-server/internal/project"
	"github.com/coderlm/coderlm-server/internal/session"
)

// Server wires the core components behind an http.Handler.
type Server struct {
	cfg      config.Config
	sessions *session.Registry
	projects *project.Registry
	router   *mux.Router
}

// NewServer constructs a Server and registers every route.
func NewServer(cfg config.Config) *Server {
	sessions := session.NewRegistry()
	projects := project.NewRegistry(cfg.MaxProjects, sessions, loaderFactory(cfg))

	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		projects: projects,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying mux.Router, e.g. for tests that want to
// drive requests directly with httptest.
func (s *Server) Router() *mux.Router {
	return s.router
}

// loaderFactory returns the project.LoaderFactory that reads plain files
// directly off disk and routes Pdf-tagged files through the PDF adapter,
// caching conversions under the project's own root.
func loaderFactory(cfg config.Config) project.LoaderFactory {
	return func(root string) project.SourceLoader {
		adapter := &pdfadapter.Adapter{
			Root:      root,
			Converter: cfg.PDFConverter,
			Timeout:   cfg.PDFTimeout,
		}
		return func(ctx context.Context, f discover.FileInfo) ([]byte, error) {
			if f.Tag == lang.Pdf {
				return adapter.Convert(ctx, f.RelPath)
			}
			return os.ReadFile(f.Path)
		}
	}
}

// loadFile reads relPath (root-relative, forward-slash) under a project,
// PDF-aware, for a single on-demand request (peek, grep, buffers, chunking).
func (s *Server) loadFile(ctx context.Context, p *project.Project, relPath string, tag lang.Tag) ([]byte, error) {
	load := loaderFactory(s.cfg)(p.Root)
	return load(ctx, discover.FileInfo{
		Path:    filepath.Join(p.Root, filepath.FromSlash(relPath)),
		RelPath: relPath,
		Tag:     tag,
	})
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/roots", s.handleRoots).Methods(http.MethodGet)

	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	scoped := api.PathPrefix("").Subrouter()
	scoped.Use(s.requireSession)

	scoped.HandleFunc("/structure", s.handleStructure).Methods(http.MethodGet)
	scoped.HandleFunc("/structure/define", s.handleStructureDefine).Methods(http.MethodPost)
	scoped.HandleFunc("/structure/redefine", s.handleStructureRedefine).Methods(http.MethodPost)
	scoped.HandleFunc("/structure/mark", s.handleStructureMark).Methods(http.MethodPost)

	scoped.HandleFunc("/symbols", s.handleSymbolsList).Methods(http.MethodGet)
	scoped.HandleFunc("/symbols/search", s.handleSymbolsSearch).Methods(http.MethodGet)
	scoped.HandleFunc("/symbols/implementation", s.handleSymbolsImplementation).Methods(http.MethodGet)
	scoped.HandleFunc("/symbols/tests", s.handleSymbolsTests).Methods(http.MethodGet)
	scoped.HandleFunc("/symbols/callers", s.handleSymbolsCallers).Methods(http.MethodGet)
	scoped.HandleFunc("/symbols/variables", s.handleSymbolsVariables).Methods(http.MethodGet)
	scoped.HandleFunc("/symbols/define", s.handleSymbolsDefine).Methods(http.MethodPost)
	scoped.HandleFunc("/symbols/redefine", s.handleSymbolsRedefine).Methods(http.MethodPost)

	scoped.HandleFunc("/peek", s.handlePeek).Methods(http.MethodGet)
	scoped.HandleFunc("/grep", s.handleGrep).Methods(http.MethodGet)
	scoped.HandleFunc("/chunk_indices", s.handleChunkIndices).Methods(http.MethodGet)
	scoped.HandleFunc("/semantic_chunks", s.handleSemanticChunks).Methods(http.MethodGet)

	scoped.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	scoped.HandleFunc("/history/compact", s.handleHistoryCompact).Methods(http.MethodPost)

	scoped.HandleFunc("/context_budget", s.handleContextBudget).Methods(http.MethodGet)

	scoped.HandleFunc("/annotations/save", s.handleAnnotationsSave).Methods(http.MethodPost)
	scoped.HandleFunc("/annotations/load", s.handleAnnotationsLoad).Methods(http.MethodPost)

	scoped.HandleFunc("/buffers", s.handleBuffersList).Methods(http.MethodGet)
	scoped.HandleFunc("/buffers", s.handleBuffersCreate).Methods(http.MethodPost)
	scoped.HandleFunc("/buffers", s.handleBuffersClear).Methods(http.MethodDelete)
	scoped.HandleFunc("/buffers/from-file", s.handleBufferFromFile).Methods(http.MethodPost)
	scoped.HandleFunc("/buffers/from-symbol", s.handleBufferFromSymbol).Methods(http.MethodPost)
	scoped.HandleFunc("/buffers/{name}/peek", s.handleBufferPeek).Methods(http.MethodGet)
	scoped.HandleFunc("/buffers/{name}", s.handleBufferInfo).Methods(http.MethodGet)
	scoped.HandleFunc("/buffers/{name}", s.handleBufferDelete).Methods(http.MethodDelete)

	scoped.HandleFunc("/vars", s.handleVarsList).Methods(http.MethodGet)
	scoped.HandleFunc("/vars", s.handleVarsSet).Methods(http.MethodPost)
	scoped.HandleFunc("/vars", s.handleVarsClear).Methods(http.MethodDelete)
	scoped.HandleFunc("/vars/final", s.handleVarsFinal).Methods(http.MethodGet)
	scoped.HandleFunc("/vars/{name}", s.handleVarGet).Methods(http.MethodGet)
	scoped.HandleFunc("/vars/{name}", s.handleVarDelete).Methods(http.MethodDelete)

	scoped.HandleFunc("/subcall_results", s.handleSubcallsList).Methods(http.MethodGet)
	scoped.HandleFunc("/subcall_results", s.handleSubcallsAdd).Methods(http.MethodPost)
	scoped.HandleFunc("/subcall_results", s.handleSubcallsClear).Methods(http.MethodDelete)
}

type ctxKey int

const (
	ctxSession ctxKey = iota
	ctxProject
)

// requireSession extracts X-Session-Id, resolves the bound session and its
// project, bumps last_active on both, and stashes them in the request
// context for downstream handlers. It also records a history entry once the
// wrapped handler returns, capturing the response body's first 200 bytes.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Session-Id")
		if id == "" {
			writeError(w, apierr.BadRequest("missing X-Session-Id header"))
			return
		}
		sess, err := s.sessions.Get(id)
		if err != nil {
			writeError(w, err)
			return
		}
		proj, err := s.projects.Get(sess.ProjectPath)
		if err != nil {
			writeError(w, err)
			return
		}
		sess.Touch()
		proj.Touch()

		ctx := context.WithValue(r.Context(), ctxSession, sess)
		ctx = context.WithValue(ctx, ctxProject, proj)

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		sess.Record(r.Method, r.URL.Path, rec.preview())
	})
}

// recordingWriter captures the first 200 bytes written to the response so
// the history middleware can record a preview without buffering the whole
// body.
type recordingWriter struct {
	http.ResponseWriter
	status  int
	head    []byte
	written int
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if w.written < 200 {
		remaining := 200 - w.written
		if remaining > len(b) {
			remaining = len(b)
		}
		w.head = append(w.head, b[:remaining]...)
	}
	w.written += len(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) preview() string {
	return string(w.head)
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(ctxSession).(*session.Session)
	return sess
}

func projectFrom(r *http.Request) *project.Project {
	proj, _ := r.Context().Value(ctxProject).(*project.Project)
	return proj
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("httpapi.encode_response", "err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*apierr.Error); ok {
		writeJSON(w, apiErr.HTTPStatus(), map[string]string{
			"type":    string(apiErr.Class),
			"message": apiErr.Message,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"type":    string(apierr.ClassInternal),
		"message": err.Error(),
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.BadRequest("invalid request body: %v", err)
	}
	return nil
}
