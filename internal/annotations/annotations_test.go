package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/filetree"
	"github.com/coderlm/coderlm-server/internal/lang"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

func TestSaveLoadRoundTrips(t *testing.T) {
	root := t.TempDir()

	tree := filetree.New()
	tree.Upsert("a.go", lang.Go)
	require.NoError(t, tree.Define("a.go", "the entry point"))
	require.NoError(t, tree.Mark("a.go", "reviewed"))

	tab := symtab.New()
	tab.Insert(symtab.Symbol{Name: "foo", File: "a.go", Kind: symtab.Function})
	require.NoError(t, tab.Define("a.go", "foo", "does the thing"))

	require.NoError(t, Save(root, Collect(tree, tab)))

	doc, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "the entry point", doc.FileDefinitions["a.go"])
	assert.Equal(t, "reviewed", doc.FileMarks["a.go"])
	assert.Equal(t, "does the thing", doc.SymbolDefinitions["a.go::foo"])

	tree2 := filetree.New()
	tree2.Upsert("a.go", lang.Go)
	tab2 := symtab.New()
	tab2.Insert(symtab.Symbol{Name: "foo", File: "a.go", Kind: symtab.Function})
	Apply(tree2, tab2, doc)

	e, err := tree2.Get("a.go")
	require.NoError(t, err)
	assert.Equal(t, "the entry point", e.Definition)
	assert.Equal(t, "reviewed", e.Mark)

	sym, _ := tab2.Get("a.go", "foo")
	assert.Equal(t, "does the thing", sym.Definition)
}

func TestLoadMissingFileReturnsEmptyDocument(t *testing.T) {
	root := t.TempDir()
	doc, err := Load(root)
	require.NoError(t, err)
	assert.Empty(t, doc.FileDefinitions)
	assert.Empty(t, doc.FileMarks)
	assert.Empty(t, doc.SymbolDefinitions)
}
