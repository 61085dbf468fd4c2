package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/lang"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(files []FileInfo) map[string]lang.Tag {
	out := make(map[string]lang.Tag, len(files))
	for _, f := range files {
		out[f.RelPath] = f.Tag
	}
	return out
}

func TestDiscoverTagsEveryFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.go", "package main\n")
	write(t, dir, "app.py", "def main(): pass\n")
	write(t, dir, "notes.txt", "free text\n")

	files, err := Discover(context.Background(), dir, nil)
	require.NoError(t, err)

	got := relPaths(files)
	assert.Equal(t, lang.Go, got["main.go"])
	assert.Equal(t, lang.Python, got["app.py"])
	// Unrecognized extensions are still indexed, tagged as plain text.
	assert.Equal(t, lang.PlainText, got["notes.txt"])
}

func TestDiscoverSkipsIgnoredDirsAndSuffixes(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.go", "package main\n")
	write(t, dir, "node_modules/pkg/index.js", "module.exports = {}\n")
	write(t, dir, "cache.pyc", "")

	files, err := Discover(context.Background(), dir, nil)
	require.NoError(t, err)

	got := relPaths(files)
	assert.Contains(t, got, "main.go")
	assert.NotContains(t, got, "node_modules/pkg/index.js")
	assert.NotContains(t, got, "cache.pyc")
}

func TestDiscoverHonorsCgrignore(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".cgrignore", "generated\n# a comment\n")
	write(t, dir, "main.go", "package main\n")
	write(t, dir, "generated/big.go", "package generated\n")

	files, err := Discover(context.Background(), dir, nil)
	require.NoError(t, err)

	got := relPaths(files)
	assert.Contains(t, got, "main.go")
	assert.NotContains(t, got, "generated/big.go")
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.go", "package main\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, dir, nil)
	require.True(t, errors.Is(err, context.Canceled))
}
