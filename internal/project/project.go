// Package project is the process-wide registry mapping filesystem roots to
// indexed project state. It eagerly builds a project's file tree and symbol
// table on first touch and enforces a bounded LRU over the set of open
// projects (spec.md §4.11).
package project

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/discover"
	"github.com/coderlm/coderlm-server/internal/extractor"
	"github.com/coderlm/coderlm-server/internal/filetree"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

// Project is a filesystem root plus its derived indices.
type Project struct {
	Root     string
	FileTree *filetree.Tree
	SymTab   *symtab.Table

	mu         sync.Mutex
	lastActive time.Time
}

// LastActive returns the project's last-active timestamp.
func (p *Project) LastActive() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}

// Touch bumps the project's last-active timestamp to now.
func (p *Project) Touch() {
	p.mu.Lock()
	p.lastActive = time.Now()
	p.mu.Unlock()
}

// SessionCounter reports how many live sessions currently reference a
// project root, consulted by eviction so a project in active use is never
// dropped. Implemented by *session.Registry; kept as an interface here to
// avoid an import cycle (session does not need to know about project).
type SessionCounter interface {
	CountForProject(root string) int
}

// SourceLoader returns the bytes to extract for a discovered file; the
// caller wires in the PDF adapter for Pdf-tagged entries.
type SourceLoader func(ctx context.Context, f discover.FileInfo) ([]byte, error)

// LoaderFactory builds a root-scoped SourceLoader, since PDF conversion
// needs to know the project root to locate its on-disk cache.
type LoaderFactory func(root string) SourceLoader

// Registry is the bounded-LRU map of canonical root path to Project.
type Registry struct {
	mu            sync.Mutex
	projects      map[string]*Project
	maxProjects   int
	sessions      SessionCounter
	loaderFactory LoaderFactory
}

// NewRegistry returns an empty registry capped at maxProjects entries.
// sessions is consulted during eviction to skip projects with live
// sessions; loaderFactory supplies extraction source bytes (PDF-aware) for
// a given project root.
func NewRegistry(maxProjects int, sessions SessionCounter, loaderFactory LoaderFactory) *Registry {
	if maxProjects <= 0 {
		maxProjects = 1
	}
	return &Registry{
		projects:      make(map[string]*Project),
		maxProjects:   maxProjects,
		sessions:      sessions,
		loaderFactory: loaderFactory,
	}
}

// Canonicalize resolves path to an absolute, symlink-free form so that
// distinct strings naming the same directory map to one registry entry.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil // best-effort; fall back to the absolute path
	}
	return resolved, nil
}

// Get returns the project already registered at root, without creating it.
func (r *Registry) Get(root string) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[root]
	if !ok {
		return nil, apierr.NotFound("project", root)
	}
	return p, nil
}

// List returns every currently registered project.
func (r *Registry) List() []*Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	return out
}

// GetOrCreateProject canonicalizes path and returns its Project, building
// the project from scratch (filesystem walk + symbol extraction) on first
// touch. If creating a new entry would exceed maxProjects, the
// least-recently-active project with no live sessions is evicted first; if
// none qualifies, the new project is refused with an Internal error.
func (r *Registry) GetOrCreateProject(ctx context.Context, path string) (*Project, error) {
	root, err := Canonicalize(path)
	if err != nil {
		return nil, apierr.BadRequest("invalid project path %q: %v", path, err)
	}

	r.mu.Lock()
	if p, ok := r.projects[root]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, apierr.BadRequest("project root %q is not a directory", path)
	}

	files, err := discover.Discover(ctx, root, nil)
	if err != nil {
		return nil, apierr.Internal("discover project files", err)
	}

	tree := filetree.New()
	for _, f := range files {
		tree.Upsert(f.RelPath, f.Tag)
	}

	tab := symtab.New()
	load := r.loaderFactory(root)
	if err := extractor.Run(ctx, files, tree, tab, extractor.SourceLoader(load)); err != nil {
		return nil, apierr.Internal("extract project symbols", err)
	}

	p := &Project{Root: root, FileTree: tree, SymTab: tab, lastActive: time.Now()}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.projects[root]; ok {
		// Lost a race with a concurrent create for the same root.
		return existing, nil
	}
	if len(r.projects) >= r.maxProjects {
		if !r.evictLocked() {
			return nil, apierr.Internal("project registry full", nil)
		}
	}
	r.projects[root] = p
	return p, nil
}

// TouchProject bumps last_active for root. Returns NotFound if root is not
// registered.
func (r *Registry) TouchProject(root string) error {
	r.mu.Lock()
	p, ok := r.projects[root]
	r.mu.Unlock()
	if !ok {
		return apierr.NotFound("project", root)
	}
	p.Touch()
	return nil
}

// evictLocked drops the least-recently-active project with no live
// sessions. Caller must hold r.mu. Returns false if no project qualifies.
func (r *Registry) evictLocked() bool {
	var oldestRoot string
	var oldestTime time.Time
	found := false

	for root, p := range r.projects {
		if r.sessions != nil && r.sessions.CountForProject(root) > 0 {
			continue
		}
		t := p.LastActive()
		if !found || t.Before(oldestTime) {
			oldestRoot, oldestTime = root, t
			found = true
		}
	}
	if !found {
		return false
	}
	delete(r.projects, oldestRoot)
	return true
}
