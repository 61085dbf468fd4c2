package filetree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/lang"
)

func TestUpsertGetRemove(t *testing.T) {
	tr := New()
	tr.Upsert("main.go", lang.Go)

	e, err := tr.Get("main.go")
	require.NoError(t, err)
	assert.Equal(t, lang.Go, e.Tag)
	assert.False(t, e.SymbolsExtracted)

	tr.Remove("main.go")
	_, err = tr.Get("main.go")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ClassNotFound))
}

func TestDefineDoesNotOverwrite(t *testing.T) {
	tr := New()
	tr.Upsert("a.go", lang.Go)

	require.NoError(t, tr.Define("a.go", "first"))
	require.NoError(t, tr.Define("a.go", "second"))

	e, err := tr.Get("a.go")
	require.NoError(t, err)
	assert.Equal(t, "first", e.Definition)
}

func TestRedefineOverwrites(t *testing.T) {
	tr := New()
	tr.Upsert("a.go", lang.Go)

	require.NoError(t, tr.Define("a.go", "first"))
	require.NoError(t, tr.Redefine("a.go", "second"))

	e, err := tr.Get("a.go")
	require.NoError(t, err)
	assert.Equal(t, "second", e.Definition)
}

func TestDefineMissingFileIsNotFound(t *testing.T) {
	tr := New()
	err := tr.Define("missing.go", "x")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ClassNotFound))
}

func TestSetExtracted(t *testing.T) {
	tr := New()
	tr.Upsert("a.go", lang.Go)
	require.NoError(t, tr.SetExtracted("a.go"))

	e, err := tr.Get("a.go")
	require.NoError(t, err)
	assert.True(t, e.SymbolsExtracted)
}

func TestLenAndIter(t *testing.T) {
	tr := New()
	tr.Upsert("a.go", lang.Go)
	tr.Upsert("b.py", lang.Python)
	tr.Upsert("c.rs", lang.Rust)

	assert.Equal(t, 3, tr.Len())

	seen := map[string]bool{}
	tr.Iter(func(e Entry) bool {
		seen[e.Path] = true
		return true
	})
	assert.Len(t, seen, 3)
}

func TestConcurrentUpsertAndIterate(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Upsert(string(rune('a'+i%26))+"file.go", lang.Go)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			tr.Iter(func(Entry) bool { return true })
		}
	}()
	wg.Wait()
}
