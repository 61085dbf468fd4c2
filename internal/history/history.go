// Package history compacts a session's call history: runs of consecutive
// entries sharing the same (method, path) collapse into one summary entry.
package history

import (
	"strconv"
	"time"
)

// Entry is one recorded API call.
type Entry struct {
	Timestamp       time.Time
	Method          string
	Path            string
	ResponsePreview string // first 200 chars of the response
}

const previewBytes = 200

// Record truncates preview to previewBytes and returns a new Entry.
func Record(method, path, preview string) Entry {
	if len(preview) > previewBytes {
		preview = preview[:previewBytes]
	}
	return Entry{Timestamp: time.Now(), Method: method, Path: path, ResponsePreview: preview}
}

// Result is the summary of a compaction pass.
type Result struct {
	OriginalCount  int
	CompactedCount int
	Removed        int
}

// Compact groups every consecutive run of entries sharing (Method, Path)
// into one summary entry, except for the last keepRecent entries, which are
// preserved verbatim. A run of length 1 is emitted unchanged; a longer run
// becomes one entry whose ResponsePreview is "[N calls compacted]" (N the
// run length), keeping the first member's Timestamp/Method/Path.
func Compact(entries []Entry, keepRecent int) ([]Entry, Result) {
	original := len(entries)
	if keepRecent < 0 {
		keepRecent = 0
	}
	if keepRecent >= original {
		return append([]Entry(nil), entries...), Result{
			OriginalCount: original, CompactedCount: original, Removed: 0,
		}
	}

	head := entries[:original-keepRecent]
	tail := entries[original-keepRecent:]

	compactedHead := compactRuns(head)
	out := append(compactedHead, tail...)

	return out, Result{
		OriginalCount:  original,
		CompactedCount: len(out),
		Removed:        original - len(out),
	}
}

func compactRuns(entries []Entry) []Entry {
	var out []Entry
	i := 0
	for i < len(entries) {
		j := i + 1
		for j < len(entries) && sameCall(entries[i], entries[j]) {
			j++
		}
		run := j - i
		if run == 1 {
			out = append(out, entries[i])
		} else {
			first := entries[i]
			out = append(out, Entry{
				Timestamp:       first.Timestamp,
				Method:          first.Method,
				Path:            first.Path,
				ResponsePreview: summaryPreview(run),
			})
		}
		i = j
	}
	return out
}

func sameCall(a, b Entry) bool {
	return a.Method == b.Method && a.Path == b.Path
}

func summaryPreview(n int) string {
	return "[" + strconv.Itoa(n) + " calls compacted]"
}
