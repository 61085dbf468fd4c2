package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/lang"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

func TestChunksSplitsAroundOversizeSymbol(t *testing.T) {
	source := make([]byte, 250)
	for i := range source {
		source[i] = 'x'
	}
	sym := symtab.Symbol{
		Name:      "Big",
		Kind:      symtab.Function,
		File:      "a.go",
		ByteRange: symtab.ByteRange{Start: 50, End: 170},
		Language:  lang.Go,
	}

	chunks := Chunks(source, []symtab.Symbol{sym}, 100)
	require.Len(t, chunks, 3)

	assert.Equal(t, 0, chunks[0].ByteStart)
	assert.Equal(t, 50, chunks[0].ByteEnd)
	assert.Empty(t, chunks[0].Symbols)

	assert.Equal(t, 50, chunks[1].ByteStart)
	assert.Equal(t, 170, chunks[1].ByteEnd)
	assert.Equal(t, []string{"Big"}, chunks[1].Symbols)

	assert.Equal(t, 170, chunks[2].ByteStart)
	assert.Equal(t, 250, chunks[2].ByteEnd)
}

func TestChunksEmptySymbolsFallsBackToByteWindows(t *testing.T) {
	source := []byte(strings.Repeat("a", 50) + "\n" + strings.Repeat("b", 50) + "\n")
	chunks := Chunks(source, nil, 40)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.ByteEnd, len(source))
	}
	assert.Equal(t, 0, chunks[0].ByteStart)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].ByteEnd, chunks[i].ByteStart)
	}
}

func TestChunksContiguousAndAscending(t *testing.T) {
	source := []byte(strings.Repeat("line\n", 40))
	syms := []symtab.Symbol{
		{Name: "a", File: "f", ByteRange: symtab.ByteRange{Start: 10, End: 20}},
		{Name: "b", File: "f", ByteRange: symtab.ByteRange{Start: 30, End: 40}},
	}
	chunks := Chunks(source, syms, 1000)
	require.NotEmpty(t, chunks)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].ByteEnd, chunks[i].ByteStart)
		assert.GreaterOrEqual(t, chunks[i].ByteStart, chunks[i-1].ByteStart)
	}
	assert.LessOrEqual(t, chunks[len(chunks)-1].ByteEnd, len(source))
}

func TestPreviewTruncatesAtCharBoundary(t *testing.T) {
	long := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 50)
	p := preview([]byte(long))
	assert.True(t, strings.HasSuffix(p, "..."))
	assert.LessOrEqual(t, len(p), previewBytes+3)
}
