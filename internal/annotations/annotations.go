// Package annotations persists human-written file and symbol annotations
// (definitions, marks) to a well-known location under a project's root, and
// restores them onto an already-indexed file tree and symbol table.
package annotations

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/filetree"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

// Document is the on-disk shape saved and loaded verbatim, so a save then
// load round-trips file definitions/marks and symbol definitions exactly.
type Document struct {
	FileDefinitions   map[string]string `json:"file_definitions"`
	FileMarks         map[string]string `json:"file_marks"`
	SymbolDefinitions map[string]string `json:"symbol_definitions"` // keyed by file::name
}

// Path returns the annotations file location for a project root.
func Path(root string) string {
	return filepath.Join(root, ".coderlm", "annotations.json")
}

// Collect builds a Document from the current state of tree and tab.
func Collect(tree *filetree.Tree, tab *symtab.Table) Document {
	doc := Document{
		FileDefinitions:   map[string]string{},
		FileMarks:         map[string]string{},
		SymbolDefinitions: map[string]string{},
	}

	tree.Iter(func(e filetree.Entry) bool {
		if e.Definition != "" {
			doc.FileDefinitions[e.Path] = e.Definition
		}
		if e.Mark != "" {
			doc.FileMarks[e.Path] = e.Mark
		}
		return true
	})

	tab.Range(func(sym symtab.Symbol) bool {
		if sym.Definition != "" {
			doc.SymbolDefinitions[sym.Key()] = sym.Definition
		}
		return true
	})

	return doc
}

// Save serializes a Document to the project's annotations path, creating
// intermediate directories as needed.
func Save(root string, doc Document) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apierr.Internal("annotations save", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apierr.Internal("annotations save", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apierr.Internal("annotations save", err)
	}
	return nil
}

// Load reads the Document for root. A missing file is not an error: it
// returns an empty Document. A present-but-unparseable file is Internal.
func Load(root string) (Document, error) {
	data, err := os.ReadFile(Path(root))
	if os.IsNotExist(err) {
		return Document{
			FileDefinitions:   map[string]string{},
			FileMarks:         map[string]string{},
			SymbolDefinitions: map[string]string{},
		}, nil
	}
	if err != nil {
		return Document{}, apierr.Internal("annotations load", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, apierr.Internal("annotations load", err)
	}
	if doc.FileDefinitions == nil {
		doc.FileDefinitions = map[string]string{}
	}
	if doc.FileMarks == nil {
		doc.FileMarks = map[string]string{}
	}
	if doc.SymbolDefinitions == nil {
		doc.SymbolDefinitions = map[string]string{}
	}
	return doc, nil
}

// Apply writes every annotation in doc onto tree and tab. File paths or
// symbol keys no longer present in the index are skipped (the entity may
// have been removed since the annotations were saved).
func Apply(tree *filetree.Tree, tab *symtab.Table, doc Document) {
	for path, def := range doc.FileDefinitions {
		_ = tree.Redefine(path, def)
	}
	for path, mark := range doc.FileMarks {
		_ = tree.Mark(path, mark)
	}
	for key, def := range doc.SymbolDefinitions {
		tab.SetDefinition(key, def)
	}
}
