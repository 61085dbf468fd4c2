// Package session is the per-client session registry: identity, the bound
// project root, REPL scratchpad, and call history. Sessions reference
// projects by root path, never by handle, so an evicted project does not
// keep a session alive (spec.md §9).
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/history"
	"github.com/coderlm/coderlm-server/internal/repl"
)

// Session is one client's REPL + history, bound to one project.
type Session struct {
	ID          string
	ProjectPath string
	CreatedAt   time.Time
	ReplState   *repl.State

	mu         sync.Mutex
	lastActive time.Time
	hist       []history.Entry
}

// LastActive returns the session's last-active timestamp.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch bumps the session's last-active timestamp to now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// Record appends a history entry, truncating preview to 200 chars.
func (s *Session) Record(method, path, preview string) {
	e := history.Record(method, path, preview)
	s.mu.Lock()
	s.hist = append(s.hist, e)
	s.mu.Unlock()
}

// History returns a snapshot clone of the session's call history.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]history.Entry, len(s.hist))
	copy(out, s.hist)
	return out
}

// CompactHistory compacts the session's history in place, keeping the last
// keepRecent entries verbatim, and returns the compaction result.
func (s *Session) CompactHistory(keepRecent int) history.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	compacted, res := history.Compact(s.hist, keepRecent)
	s.hist = compacted
	return res
}

// Registry is the process-wide map of session id to Session.
type Registry struct {
	sessions *xsync.MapOf[string, *Session]
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: xsync.NewMapOf[string, *Session]()}
}

// Create mints a new session bound to projectPath.
func (r *Registry) Create(projectPath string) *Session {
	now := time.Now()
	s := &Session{
		ID:          uuid.NewString(),
		ProjectPath: projectPath,
		CreatedAt:   now,
		lastActive:  now,
		ReplState:   repl.New(),
	}
	r.sessions.Store(s.ID, s)
	return s
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions.Load(id)
	if !ok {
		return nil, apierr.NotFound("session", id)
	}
	return s, nil
}

// List returns every session, in no particular order.
func (r *Registry) List() []*Session {
	var out []*Session
	r.sessions.Range(func(_ string, s *Session) bool {
		out = append(out, s)
		return true
	})
	return out
}

// Delete removes a session. Returns NotFound if absent.
func (r *Registry) Delete(id string) error {
	_, ok := r.sessions.LoadAndDelete(id)
	if !ok {
		return apierr.NotFound("session", id)
	}
	return nil
}

// CountForProject returns how many live sessions currently reference
// projectPath, used by the project registry's eviction policy.
func (r *Registry) CountForProject(projectPath string) int {
	n := 0
	r.sessions.Range(func(_ string, s *Session) bool {
		if s.ProjectPath == projectPath {
			n++
		}
		return true
	})
	return n
}
