package mirror

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSyncCopiesTree(t *testing.T) {
	src := t.TempDir()
	destRoot := t.TempDir()
	writeFile(t, filepath.Join(src, "cf.txt"), "codeforces report")
	writeFile(t, filepath.Join(src, "nested", "deep", "lc.txt"), "leetcode report")

	s := NewSyncer(src, destRoot, observability.NewPrinter(io.Discard))
	require.NoError(t, s.Sync())

	dest := filepath.Join(destRoot, destSubdir)
	data, err := os.ReadFile(filepath.Join(dest, "cf.txt"))
	require.NoError(t, err)
	assert.Equal(t, "codeforces report", string(data))

	data, err = os.ReadFile(filepath.Join(dest, "nested", "deep", "lc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "leetcode report", string(data))
}

func TestSyncOverwritesAndPrunesSubtrees(t *testing.T) {
	src := t.TempDir()
	destRoot := t.TempDir()
	writeFile(t, filepath.Join(src, "cf.txt"), "new content")
	writeFile(t, filepath.Join(src, "sub", "keep.txt"), "kept")

	// Pre-existing mirror state: a stale file at the top level survives,
	// but stale files inside a mirrored subtree are pruned.
	dest := filepath.Join(destRoot, destSubdir)
	writeFile(t, filepath.Join(dest, "cf.txt"), "old content")
	writeFile(t, filepath.Join(dest, "sub", "stale.txt"), "stale")

	s := NewSyncer(src, destRoot, observability.NewPrinter(io.Discard))
	require.NoError(t, s.Sync())

	data, err := os.ReadFile(filepath.Join(dest, "cf.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	_, err = os.Stat(filepath.Join(dest, "sub", "stale.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dest, "sub", "keep.txt"))
	assert.NoError(t, err)
}

func TestSyncMissingSourceIsWarning(t *testing.T) {
	var console bytes.Buffer
	s := NewSyncer(filepath.Join(t.TempDir(), "absent"), t.TempDir(), observability.NewPrinter(&console))
	require.NoError(t, s.Sync())
	assert.Contains(t, console.String(), "Skipping local sync")
}

func TestSyncUnconfiguredDestinationIsWarning(t *testing.T) {
	var console bytes.Buffer
	s := NewSyncer(t.TempDir(), "", observability.NewPrinter(&console))
	require.NoError(t, s.Sync())
	assert.Contains(t, console.String(), "not configured")
}
