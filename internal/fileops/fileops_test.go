package fileops

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

func TestEnsureFileCreatesNestedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "query.txt")
	require.NoError(t, EnsureFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestEnsureFilePreservesExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	require.NoError(t, EnsureFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestEnsureFileEmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, EnsureFile(""))
}

func TestClearTempDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "nested.txt"), []byte("deep"), 0o644))

	m := NewManager(dir, observability.NewPrinter(io.Discard))
	require.NoError(t, m.ClearTempDir())

	info, err := os.Stat(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	// .gitignore and files inside subdirectories are untouched.
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "*", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "sub", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(data))
}

func TestClearTempDirMissing(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent"), observability.NewPrinter(io.Discard))
	require.Error(t, m.ClearTempDir())
}
