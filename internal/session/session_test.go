package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderlm/coderlm-server/internal/apierr"
)

func TestCreateGetDelete(t *testing.T) {
	reg := NewRegistry()
	sess := reg.Create("/repo")
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "/repo", sess.ProjectPath)

	got, err := reg.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, reg.Delete(sess.ID))
	_, err = reg.Get(sess.ID)
	assert.True(t, apierr.Is(err, apierr.ClassNotFound))
}

func TestTouchUpdatesLastActive(t *testing.T) {
	reg := NewRegistry()
	sess := reg.Create("/repo")
	first := sess.LastActive()

	sess.Touch()
	assert.False(t, sess.LastActive().Before(first))
}

func TestRecordAndCompactHistory(t *testing.T) {
	reg := NewRegistry()
	sess := reg.Create("/repo")

	sess.Record("GET", "/api/v1/structure", "ok")
	sess.Record("GET", "/api/v1/structure", "ok")
	sess.Record("GET", "/api/v1/symbols", "ok")

	assert.Len(t, sess.History(), 3)

	res := sess.CompactHistory(0)
	assert.Equal(t, 3, res.OriginalCount)
	assert.Equal(t, 2, res.CompactedCount)
	assert.Len(t, sess.History(), 2)
}

func TestCountForProject(t *testing.T) {
	reg := NewRegistry()
	reg.Create("/repo-a")
	reg.Create("/repo-a")
	reg.Create("/repo-b")

	assert.Equal(t, 2, reg.CountForProject("/repo-a"))
	assert.Equal(t, 1, reg.CountForProject("/repo-b"))
	assert.Equal(t, 0, reg.CountForProject("/repo-c"))
}
