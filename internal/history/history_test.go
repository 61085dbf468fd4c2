package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkEntry(method, path string) Entry {
	return Entry{Timestamp: time.Now(), Method: method, Path: path, ResponsePreview: "x"}
}

func TestCompactGroupsConsecutiveRuns(t *testing.T) {
	entries := []Entry{
		mkEntry("GET", "/p/a"),
		mkEntry("GET", "/p/a"),
		mkEntry("GET", "/p/a"),
		mkEntry("POST", "/q"),
	}

	out, res := Compact(entries, 1)
	require.Len(t, out, 2)
	assert.Equal(t, "[3 calls compacted]", out[0].ResponsePreview)
	assert.Equal(t, "GET", out[0].Method)
	assert.Equal(t, "/p/a", out[0].Path)
	assert.Equal(t, "POST", out[1].Method)

	assert.Equal(t, Result{OriginalCount: 4, CompactedCount: 2, Removed: 2}, res)
}

func TestCompactSingletonRunUnchanged(t *testing.T) {
	entries := []Entry{mkEntry("GET", "/a"), mkEntry("POST", "/b")}
	out, res := Compact(entries, 0)
	require.Len(t, out, 2)
	assert.Equal(t, "x", out[0].ResponsePreview)
	assert.Equal(t, Result{OriginalCount: 2, CompactedCount: 2, Removed: 0}, res)
}

func TestCompactKeepRecentExceedsLength(t *testing.T) {
	entries := []Entry{mkEntry("GET", "/a")}
	out, res := Compact(entries, 10)
	require.Len(t, out, 1)
	assert.Equal(t, Result{OriginalCount: 1, CompactedCount: 1, Removed: 0}, res)
}

func TestRecordTruncatesPreview(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	e := Record("GET", "/x", string(long))
	assert.Len(t, e.ResponsePreview, 200)
}
