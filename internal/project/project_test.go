package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/apierr"
	"github.com/coderlm/coderlm-server/internal/discover"
)

func readLoader(_ string) SourceLoader {
	return func(ctx context.Context, f discover.FileInfo) ([]byte, error) {
		return os.ReadFile(f.Path)
	}
}

type fakeSessions struct{ counts map[string]int }

func (f fakeSessions) CountForProject(root string) int { return f.counts[root] }

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
	}
	return dir
}

func TestGetOrCreateProjectBuildsIndices(t *testing.T) {
	dir := writeProject(t, map[string]string{"a.go": "package a\n"})
	reg := NewRegistry(10, fakeSessions{}, readLoader)

	p, err := reg.GetOrCreateProject(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, p.FileTree.Len())

	root, err := Canonicalize(dir)
	require.NoError(t, err)
	assert.Equal(t, root, p.Root)

	p2, err := reg.GetOrCreateProject(context.Background(), dir)
	require.NoError(t, err)
	assert.Same(t, p, p2)
}

func TestGetOrCreateProjectRejectsNonDirectory(t *testing.T) {
	dir := writeProject(t, map[string]string{"a.go": ""})
	reg := NewRegistry(10, fakeSessions{}, readLoader)

	_, err := reg.GetOrCreateProject(context.Background(), filepath.Join(dir, "a.go"))
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ClassBadRequest))
}

func TestEvictionSkipsProjectsWithLiveSessions(t *testing.T) {
	dirA := writeProject(t, map[string]string{"a.go": ""})
	dirB := writeProject(t, map[string]string{"b.go": ""})
	dirC := writeProject(t, map[string]string{"c.go": ""})
	rootA, _ := Canonicalize(dirA)
	rootB, _ := Canonicalize(dirB)

	sessions := fakeSessions{counts: map[string]int{rootA: 1}}
	reg := NewRegistry(2, sessions, readLoader)

	_, err := reg.GetOrCreateProject(context.Background(), dirA)
	require.NoError(t, err)
	_, err = reg.GetOrCreateProject(context.Background(), dirB)
	require.NoError(t, err)

	// A is older but pinned by a live session, so B is the eviction victim.
	_, err = reg.GetOrCreateProject(context.Background(), dirC)
	require.NoError(t, err)

	_, err = reg.Get(rootA)
	assert.NoError(t, err, "project with a live session must not be evicted")
	_, err = reg.Get(rootB)
	assert.Error(t, err, "idle project should have been evicted")
}

func TestEvictionRefusesWhenNoneQualify(t *testing.T) {
	dirA := writeProject(t, map[string]string{"a.go": ""})
	dirB := writeProject(t, map[string]string{"b.go": ""})
	rootA, _ := Canonicalize(dirA)
	rootB, _ := Canonicalize(dirB)

	sessions := fakeSessions{counts: map[string]int{rootA: 1, rootB: 1}}
	reg := NewRegistry(1, sessions, readLoader)

	_, err := reg.GetOrCreateProject(context.Background(), dirA)
	require.NoError(t, err)

	_, err = reg.GetOrCreateProject(context.Background(), dirB)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.ClassInternal))
}
