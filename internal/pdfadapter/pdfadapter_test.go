package pdfadapter

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/apierr"
)

// writeFakeConverter writes a shell script that echoes a fixed markdown
// payload to stdout, ignoring its PDF path argument.
func writeFakeConverter(t *testing.T, dir, output string, exitCode int) string {
	t.Helper()
	path := filepath.Join(dir, "fake-converter.sh")
	script := "#!/bin/sh\ncat <<'EOF'\n" + output + "\nEOF\nexit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestConvertInvokesConverterAndCaches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.pdf"), []byte("%PDF-fake"), 0o644))

	converter := writeFakeConverter(t, root, "# Title", 0)
	a := &Adapter{Root: root, Converter: converter, Timeout: 5 * time.Second}

	out, err := a.Convert(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Contains(t, string(out), "# Title")

	cachePath := filepath.Join(root, ".coderlm", "converted", "doc.pdf.md")
	_, statErr := os.Stat(cachePath)
	require.NoError(t, statErr)
}

func TestConvertServesFreshCacheWithoutReinvoking(t *testing.T) {
	root := t.TempDir()
	pdfPath := filepath.Join(root, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-fake"), 0o644))

	cachePath := filepath.Join(root, ".coderlm", "converted", "doc.pdf.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(cachePath), 0o755))
	require.NoError(t, os.WriteFile(cachePath, []byte("cached content"), 0o644))

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(cachePath, future, future))

	// Converter would fail if invoked, proving the cache path is taken.
	converter := writeFakeConverter(t, root, "ignored", 1)
	a := &Adapter{Root: root, Converter: converter, Timeout: 5 * time.Second}

	out, err := a.Convert(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "cached content", string(out))
}

func TestConvertConverterFailureIsInternal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.pdf"), []byte("%PDF-fake"), 0o644))

	converter := writeFakeConverter(t, root, "boom", 1)
	a := &Adapter{Root: root, Converter: converter, Timeout: 5 * time.Second}

	_, err := a.Convert(context.Background(), "doc.pdf")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ClassInternal))
}

func TestConvertMissingSourceIsNotFound(t *testing.T) {
	root := t.TempDir()
	a := &Adapter{Root: root, Converter: "/bin/true"}

	_, err := a.Convert(context.Background(), "missing.pdf")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ClassNotFound))
}
