package symtab

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/lang"
)

func mkSymbol(file, name string) Symbol {
	return Symbol{
		Name:      name,
		Kind:      Function,
		File:      file,
		ByteRange: ByteRange{Start: 0, End: 10},
		LineRange: LineRange{Start: 1, End: 2},
		Language:  lang.Go,
		Signature: "func " + name + "()",
	}
}

func TestInsertAndGet(t *testing.T) {
	tb := New()
	tb.Insert(mkSymbol("a.go", "Foo"))

	sym, ok := tb.Get("a.go", "Foo")
	require.True(t, ok)
	assert.Equal(t, "Foo", sym.Name)

	list := tb.ListByFile("a.go")
	require.Len(t, list, 1)
	assert.Equal(t, "Foo", list[0].Name)
}

func TestInsertReplaceKeepsIndicesConsistent(t *testing.T) {
	tb := New()
	tb.Insert(mkSymbol("a.go", "Foo"))
	updated := mkSymbol("a.go", "Foo")
	updated.Signature = "func Foo(x int)"
	tb.Insert(updated)

	list := tb.ListByFile("a.go")
	require.Len(t, list, 1)
	assert.Equal(t, "func Foo(x int)", list[0].Signature)

	found := tb.Search("foo", 10)
	require.Len(t, found, 1)
}

func TestRemoveFileDropsSymbolsAndCallers(t *testing.T) {
	tb := New()
	tb.Insert(mkSymbol("a.go", "Foo"))
	tb.Insert(mkSymbol("b.go", "Bar"))
	tb.AddCaller("Foo", "a.go", 5, "Foo()")
	tb.AddCaller("Foo", "b.go", 9, "Foo()")

	tb.RemoveFile("a.go")

	_, ok := tb.Get("a.go", "Foo")
	assert.False(t, ok)
	assert.Empty(t, tb.ListByFile("a.go"))

	_, ok = tb.Get("b.go", "Bar")
	assert.True(t, ok)

	refs, ok := tb.GetCallers("Foo")
	require.True(t, ok)
	require.Len(t, refs, 1)
	assert.Equal(t, "b.go", refs[0].File)
}

func TestRemoveFileDropsEmptiedCallee(t *testing.T) {
	tb := New()
	tb.AddCaller("Foo", "a.go", 1, "Foo()")
	tb.RemoveFile("a.go")

	_, ok := tb.GetCallers("Foo")
	assert.False(t, ok)
}

func TestGetCallersAbsenceDistinctFromEmpty(t *testing.T) {
	tb := New()
	_, ok := tb.GetCallers("Missing")
	assert.False(t, ok)
}

func TestSearchCaseInsensitiveAndLimit(t *testing.T) {
	tb := New()
	tb.Insert(mkSymbol("a.go", "ParseFile"))
	tb.Insert(mkSymbol("b.go", "parseTree"))
	tb.Insert(mkSymbol("c.go", "Render"))

	found := tb.Search("PARSE", 10)
	assert.Len(t, found, 2)

	limited := tb.Search("PARSE", 1)
	assert.Len(t, limited, 1)
}

func TestConcurrentInsertAndAddCaller(t *testing.T) {
	tb := New()
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tb.Insert(mkSymbol("f.go", "Sym"))
			tb.AddCaller("Sym", "f.go", i, "Sym()")
		}(i)
	}
	wg.Wait()

	refs, ok := tb.GetCallers("Sym")
	require.True(t, ok)
	assert.Len(t, refs, 200)
}

func TestDefineDoesNotOverwriteRedefineDoes(t *testing.T) {
	tb := New()
	tb.Insert(mkSymbol("f.go", "foo"))

	require.NoError(t, tb.Define("f.go", "foo", "first"))
	require.NoError(t, tb.Define("f.go", "foo", "second"))
	sym, _ := tb.Get("f.go", "foo")
	assert.Equal(t, "first", sym.Definition)

	require.NoError(t, tb.Redefine("f.go", "foo", "third"))
	sym, _ = tb.Get("f.go", "foo")
	assert.Equal(t, "third", sym.Definition)

	err := tb.Define("f.go", "ghost", "x")
	require.Error(t, err)
}

func TestRangeVisitsEverySymbol(t *testing.T) {
	tb := New()
	tb.Insert(mkSymbol("f.go", "a"))
	tb.Insert(mkSymbol("g.go", "b"))

	var names []string
	tb.Range(func(s Symbol) bool {
		names = append(names, s.Name)
		return true
	})
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}
