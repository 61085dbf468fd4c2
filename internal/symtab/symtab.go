// Package symtab is the concurrent symbol table for one project: a primary
// store keyed by file::name, two secondary indices (by_name, by_file), and a
// reverse call graph.
package symtab

import (
	"sort"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/lang"
)

// Kind is the closed set of symbol kinds the extractor may emit.
type Kind string

const (
	Function  Kind = "function"
	Method    Kind = "method"
	Struct    Kind = "struct"
	Enum      Kind = "enum"
	Trait     Kind = "trait"
	Class     Kind = "class"
	Interface Kind = "interface"
	Type      Kind = "type"
	Constant  Kind = "constant"
	Module    Kind = "module"
)

// ByteRange is an inclusive-start, exclusive-end byte span within a file.
type ByteRange struct {
	Start, End int
}

// LineRange is a 1-indexed, inclusive line span.
type LineRange struct {
	Start, End int
}

// Symbol is one extracted definition.
type Symbol struct {
	Name       string
	Kind       Kind
	File       string
	ByteRange  ByteRange
	LineRange  LineRange
	Language   lang.Tag
	Signature  string
	Definition string // optional human-written annotation
	Parent     string // enclosing type for methods, empty otherwise
}

// Key returns the symbol's primary-store key: file::name.
func (s Symbol) Key() string {
	return s.File + "::" + s.Name
}

// CallerRef is one call site referencing a callee by name.
type CallerRef struct {
	File string
	Line int
	Text string
}

// Table is the concurrent symbol table for one project.
type Table struct {
	primary *xsync.MapOf[string, Symbol]
	byName  *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
	byFile  *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]

	callersMu sync.Mutex
	callers   map[string][]CallerRef
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		primary: xsync.NewMapOf[string, Symbol](),
		byName:  xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
		byFile:  xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
		callers: make(map[string][]CallerRef),
	}
}

func indexAdd(idx *xsync.MapOf[string, *xsync.MapOf[string, struct{}]], bucket, key string) {
	set, _ := idx.LoadOrCompute(bucket, func() *xsync.MapOf[string, struct{}] {
		return xsync.NewMapOf[string, struct{}]()
	})
	set.Store(key, struct{}{})
}

func indexRemove(idx *xsync.MapOf[string, *xsync.MapOf[string, struct{}]], bucket, key string) {
	set, ok := idx.Load(bucket)
	if !ok {
		return
	}
	set.Delete(key)
	if set.Size() == 0 {
		idx.Delete(bucket)
	}
}

// Insert atomically writes Symbol into the primary store and both secondary
// indices. If the key already exists, the new record replaces the old one
// and stale index entries (e.g. the previous name, if renamed) are dropped.
func (t *Table) Insert(sym Symbol) {
	key := sym.Key()
	if old, ok := t.primary.Load(key); ok {
		if old.Name != sym.Name {
			indexRemove(t.byName, old.Name, key)
		}
		if old.File != sym.File {
			indexRemove(t.byFile, old.File, key)
		}
	}
	t.primary.Store(key, sym)
	indexAdd(t.byName, sym.Name, key)
	indexAdd(t.byFile, sym.File, key)
}

// RemoveFile deletes every symbol whose File equals file, including their
// by_name entries, and drops every caller reference originating from file
// (an emptied callee entry is dropped entirely).
func (t *Table) RemoveFile(file string) {
	var keys []string
	if set, ok := t.byFile.Load(file); ok {
		set.Range(func(k string, _ struct{}) bool {
			keys = append(keys, k)
			return true
		})
	}
	for _, key := range keys {
		if sym, ok := t.primary.Load(key); ok {
			indexRemove(t.byName, sym.Name, key)
		}
		t.primary.Delete(key)
	}
	t.byFile.Delete(file)

	t.callersMu.Lock()
	defer t.callersMu.Unlock()
	for callee, refs := range t.callers {
		kept := refs[:0:0]
		for _, r := range refs {
			if r.File != file {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(t.callers, callee)
		} else {
			t.callers[callee] = kept
		}
	}
}

// Get returns the symbol stored under file::name.
func (t *Table) Get(file, name string) (Symbol, bool) {
	return t.primary.Load(file + "::" + name)
}

// Range calls fn for every symbol in the primary store. Iteration is not a
// consistent snapshot, matching the file tree's Iter contract.
func (t *Table) Range(fn func(Symbol) bool) {
	t.primary.Range(func(_ string, sym Symbol) bool {
		return fn(sym)
	})
}

// Define sets the definition annotation for file::name only if it is
// currently empty. Returns NotFound if the symbol is absent.
func (t *Table) Define(file, name, def string) error {
	key := file + "::" + name
	_, ok := t.primary.Compute(key, func(sym Symbol, loaded bool) (Symbol, bool) {
		if !loaded {
			return Symbol{}, true // delete-on-missing keeps the map untouched
		}
		if sym.Definition == "" {
			sym.Definition = def
		}
		return sym, false
	})
	if !ok {
		return apierr.NotFound("symbol", key)
	}
	return nil
}

// Redefine overwrites the definition annotation for file::name
// unconditionally. Returns NotFound if the symbol is absent.
func (t *Table) Redefine(file, name, def string) error {
	key := file + "::" + name
	_, ok := t.primary.Compute(key, func(sym Symbol, loaded bool) (Symbol, bool) {
		if !loaded {
			return Symbol{}, true
		}
		sym.Definition = def
		return sym, false
	})
	if !ok {
		return apierr.NotFound("symbol", key)
	}
	return nil
}

// SetDefinition overwrites the definition annotation for a known primary key
// (file::name). Unlike Redefine, a missing key is silently ignored: it is
// used to replay saved annotations onto a freshly-extracted table, where a
// symbol may have disappeared since the annotation was written.
func (t *Table) SetDefinition(key, def string) {
	t.primary.Compute(key, func(sym Symbol, loaded bool) (Symbol, bool) {
		if !loaded {
			return Symbol{}, true
		}
		sym.Definition = def
		return sym, false
	})
}

// ListByFile returns every symbol whose File equals file.
func (t *Table) ListByFile(file string) []Symbol {
	set, ok := t.byFile.Load(file)
	if !ok {
		return nil
	}
	var out []Symbol
	set.Range(func(key string, _ struct{}) bool {
		if sym, ok := t.primary.Load(key); ok {
			out = append(out, sym)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// All returns every symbol in the table, bounded by limit (0 or negative
// means unbounded). Ordering is deterministic for an unchanging table.
func (t *Table) All(limit int) []Symbol {
	var out []Symbol
	t.primary.Range(func(_ string, sym Symbol) bool {
		out = append(out, sym)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Search returns symbols whose name contains substr (case-insensitive),
// bounded by limit. Ordering is deterministic for an unchanging table but is
// not otherwise specified.
func (t *Table) Search(substr string, limit int) []Symbol {
	needle := strings.ToLower(substr)
	var out []Symbol
	t.byName.Range(func(name string, keys *xsync.MapOf[string, struct{}]) bool {
		if !strings.Contains(strings.ToLower(name), needle) {
			return true
		}
		keys.Range(func(key string, _ struct{}) bool {
			if sym, ok := t.primary.Load(key); ok {
				out = append(out, sym)
			}
			return true
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].File < out[j].File
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AddCaller appends a call-site reference for callee. Concurrent appends are
// all preserved.
func (t *Table) AddCaller(callee, file string, line int, text string) {
	t.callersMu.Lock()
	defer t.callersMu.Unlock()
	t.callers[callee] = append(t.callers[callee], CallerRef{File: file, Line: line, Text: text})
}

// GetCallers returns a snapshot clone of callee's caller list, and whether
// any entry exists at all (absence is distinct from an empty list, though in
// practice an empty list is removed by RemoveFile rather than kept).
func (t *Table) GetCallers(callee string) ([]CallerRef, bool) {
	t.callersMu.Lock()
	defer t.callersMu.Unlock()
	refs, ok := t.callers[callee]
	if !ok {
		return nil, false
	}
	out := make([]CallerRef, len(refs))
	copy(out, refs)
	return out, true
}
