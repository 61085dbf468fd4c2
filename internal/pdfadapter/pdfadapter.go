// Package pdfadapter converts PDF files to markdown text via an external
// command, caching the result on disk keyed by the source file's mtime.
package pdfadapter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/coderlm/coderlm-server/internal/apierr"
)

// Adapter converts PDFs to markdown using a configured external command.
type Adapter struct {
	// Root is the project root; the cache lives under Root/.coderlm/converted.
	Root string
	// Converter is the external command name (or absolute path). It is
	// invoked with a single argument: the absolute PDF path. It must write
	// markdown to standard output and exit non-zero on failure.
	Converter string
	// Timeout bounds a single conversion invocation.
	Timeout time.Duration
}

func (a *Adapter) cachePath(relPath string) string {
	return filepath.Join(a.Root, ".coderlm", "converted", filepath.FromSlash(relPath)+".md")
}

// Convert returns the markdown text for the PDF at relPath (root-relative,
// forward-slash separated). It serves a cached conversion when the cache's
// mtime is at least as new as the source PDF's, and otherwise invokes the
// external converter and writes the result to the cache.
func (a *Adapter) Convert(ctx context.Context, relPath string) ([]byte, error) {
	absPath := filepath.Join(a.Root, filepath.FromSlash(relPath))

	srcInfo, err := os.Stat(absPath)
	if err != nil {
		return nil, apierr.NotFound("file", relPath)
	}

	cachePath := a.cachePath(relPath)
	if cacheInfo, err := os.Stat(cachePath); err == nil {
		if !cacheInfo.ModTime().Before(srcInfo.ModTime()) {
			data, err := os.ReadFile(cachePath)
			if err == nil {
				return data, nil
			}
		}
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, a.Converter, absPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, apierr.Internal(fmt.Sprintf("pdf convert %q", relPath), fmt.Errorf("%w: %s", err, stderr.String()))
	}

	output := stdout.Bytes()
	if !utf8.Valid(output) {
		return nil, apierr.Internal(fmt.Sprintf("pdf convert %q", relPath), fmt.Errorf("converter produced non-UTF-8 output"))
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return nil, apierr.Internal(fmt.Sprintf("pdf cache %q", relPath), err)
	}
	if err := os.WriteFile(cachePath, output, 0o644); err != nil {
		return nil, apierr.Internal(fmt.Sprintf("pdf cache %q", relPath), err)
	}

	return output, nil
}
