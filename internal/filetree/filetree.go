// Package filetree is the thread-safe map of relative path to file metadata
// for one project: language tag, human-written annotations, and the
// symbols-extracted flag.
package filetree

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/lang"
)

// Entry is one indexed path's metadata. Definition and Mark are optional
// human-written annotations; they never affect indexing.
type Entry struct {
	Path             string
	Tag              lang.Tag
	Definition       string
	Mark             string
	SymbolsExtracted bool
}

// Tree is the concurrent file tree for one project. The zero value is not
// usable; construct with New.
type Tree struct {
	files *xsync.MapOf[string, Entry]
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{files: xsync.NewMapOf[string, Entry]()}
}

// Upsert inserts or replaces the entry for path, setting its language tag.
// Existing annotations and the extracted flag are cleared, matching a fresh
// discovery of the path.
func (t *Tree) Upsert(path string, tag lang.Tag) {
	t.files.Store(path, Entry{Path: path, Tag: tag})
}

// Get returns the entry for path.
func (t *Tree) Get(path string) (Entry, error) {
	e, ok := t.files.Load(path)
	if !ok {
		return Entry{}, apierr.NotFound("file", path)
	}
	return e, nil
}

// Remove deletes the entry for path, if present.
func (t *Tree) Remove(path string) {
	t.files.Delete(path)
}

// Len returns the number of tracked paths.
func (t *Tree) Len() int {
	return t.files.Size()
}

// Iter calls fn for every entry. Iteration is not a consistent snapshot:
// concurrent upserts/removes may or may not be observed.
func (t *Tree) Iter(fn func(Entry) bool) {
	t.files.Range(func(_ string, e Entry) bool {
		return fn(e)
	})
}

// Define sets the definition annotation for path only if it is currently
// empty. Returns NotFound if path is absent.
func (t *Tree) Define(path, def string) error {
	_, ok := t.files.Compute(path, func(e Entry, loaded bool) (Entry, bool) {
		if !loaded {
			return Entry{}, true // delete-on-missing keeps the map untouched
		}
		if e.Definition == "" {
			e.Definition = def
		}
		return e, false
	})
	if !ok {
		return apierr.NotFound("file", path)
	}
	return nil
}

// Redefine overwrites the definition annotation for path unconditionally.
// Returns NotFound if path is absent.
func (t *Tree) Redefine(path, def string) error {
	_, ok := t.files.Compute(path, func(e Entry, loaded bool) (Entry, bool) {
		if !loaded {
			return Entry{}, true
		}
		e.Definition = def
		return e, false
	})
	if !ok {
		return apierr.NotFound("file", path)
	}
	return nil
}

// Mark sets the mark annotation for path unconditionally. Returns NotFound
// if path is absent.
func (t *Tree) Mark(path, mark string) error {
	_, ok := t.files.Compute(path, func(e Entry, loaded bool) (Entry, bool) {
		if !loaded {
			return Entry{}, true
		}
		e.Mark = mark
		return e, false
	})
	if !ok {
		return apierr.NotFound("file", path)
	}
	return nil
}

// SetExtracted marks path as having been processed by the symbol extractor,
// whether or not any symbols were found. Returns NotFound if path is absent.
func (t *Tree) SetExtracted(path string) error {
	_, ok := t.files.Compute(path, func(e Entry, loaded bool) (Entry, bool) {
		if !loaded {
			return Entry{}, true
		}
		e.SymbolsExtracted = true
		return e, false
	})
	if !ok {
		return apierr.NotFound("file", path)
	}
	return nil
}
