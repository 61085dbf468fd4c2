// Package chunker implements semantic, symbol-boundary chunking: a file is
// divided into chunks that try to keep whole symbols together, falling back
// to byte-window chunks when the file has no extracted symbols.
package chunker

import (
	"sort"

	"github.com/coderlm/coderlm-server/internal/content"
	"github.com/coderlm/coderlm-server/internal/symtab"
)

// Chunk is one emitted chunk of a file.
type Chunk struct {
	Index     int
	ByteStart int
	ByteEnd   int
	LineStart int
	LineEnd   int
	Symbols   []string
	Preview   string
}

const previewBytes = 200

// Chunks divides source into chunks aligned to symbol boundaries, given the
// file's symbols (any order; Chunks sorts them by ByteRange.Start) and a
// byte budget. If symbols is empty, it falls back to byte-window chunks
// broken at the nearest preceding newline.
func Chunks(source []byte, symbols []symtab.Symbol, maxChunkBytes int) []Chunk {
	if len(source) == 0 {
		return nil
	}
	if maxChunkBytes <= 0 {
		maxChunkBytes = len(source)
	}
	if len(symbols) == 0 {
		return fallbackChunks(source, maxChunkBytes)
	}
	return symbolChunks(source, symbols, maxChunkBytes)
}

func symbolChunks(source []byte, symbols []symtab.Symbol, maxChunkBytes int) []Chunk {
	sorted := append([]symtab.Symbol(nil), symbols...)
	sortByStart(sorted)

	fileSize := len(source)
	var out []Chunk
	chunkStart := 0
	var chunkSyms []string

	emit := func(end int) {
		if end <= chunkStart {
			return
		}
		out = append(out, makeChunk(len(out), source, chunkStart, end, chunkSyms))
		chunkStart = end
		chunkSyms = nil
	}

	for _, sym := range sorted {
		start, end := sym.ByteRange.Start, sym.ByteRange.End
		if start < chunkStart {
			// Overlapping/duplicate-key leftover; fold into current chunk.
			if end > chunkStart {
				chunkSyms = append(chunkSyms, sym.Name)
			}
			continue
		}

		symSize := end - start
		if chunkStart < start && (end-chunkStart) > maxChunkBytes && len(chunkSyms) > 0 {
			emit(start)
		}

		if symSize > maxChunkBytes && len(chunkSyms) == 0 {
			emit(start) // flush any symbol-less gap before the oversize symbol
			out = append(out, makeChunk(len(out), source, start, end, []string{sym.Name}))
			chunkStart = end
			continue
		}

		chunkSyms = append(chunkSyms, sym.Name)
	}

	if chunkStart < fileSize {
		emit(fileSize)
	}

	return out
}

func fallbackChunks(source []byte, maxChunkBytes int) []Chunk {
	fileSize := len(source)
	var out []Chunk
	start := 0
	for start < fileSize {
		end := start + maxChunkBytes
		if end >= fileSize {
			end = fileSize
		} else {
			end = content.ChunkIndices(source[start:], maxChunkBytes, 0)[0].End + start
			if nl := lastNewline(source, start, end); nl > start && end < fileSize {
				end = nl + 1
			}
		}
		out = append(out, makeChunk(len(out), source, start, end, nil))
		start = end
	}
	return out
}

func lastNewline(source []byte, start, end int) int {
	for i := end - 1; i > start; i-- {
		if source[i] == '\n' {
			return i
		}
	}
	return start
}

func makeChunk(index int, source []byte, start, end int, symbols []string) Chunk {
	text := source[start:end]
	return Chunk{
		Index:     index,
		ByteStart: start,
		ByteEnd:   end,
		LineStart: countNewlines(source[:start]) + 1,
		LineEnd:   countNewlines(source[:end]) + 1,
		Symbols:   symbols,
		Preview:   preview(text),
	}
}

func countNewlines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

// preview returns the first previewBytes bytes of text, clamped to a valid
// UTF-8 character boundary, suffixed with "..." when truncated.
func preview(text []byte) string {
	if len(text) <= previewBytes {
		return string(text)
	}
	cut := previewBytes
	for cut > 0 && isContinuation(text[cut]) {
		cut--
	}
	return string(text[:cut]) + "..."
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

func sortByStart(symbols []symtab.Symbol) {
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].ByteRange.Start < symbols[j].ByteRange.Start
	})
}
