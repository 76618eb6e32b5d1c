package lint

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# heading\n"), 0o644))
}

func TestMarkdownFilesSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"))
	writeFile(t, filepath.Join(root, "docs", "guide.md"))
	writeFile(t, filepath.Join(root, ".git", "ignored.md"))
	writeFile(t, filepath.Join(root, "node_modules", "dep", "ignored.md"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	l := NewLinter(root, []string{".git", "node_modules"}, observability.NewPrinter(io.Discard))
	files, err := l.markdownFiles()
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Contains(t, files, filepath.Join(root, "README.md"))
	assert.Contains(t, files, filepath.Join(root, "docs", "guide.md"))
}

func TestRunFixesAllIssues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"))

	l := NewLinter(root, nil, observability.NewPrinter(io.Discard))
	scans := 0
	l.run = func(ctx context.Context, args ...string) (string, error) {
		switch args[0] {
		case "scan":
			scans++
			if scans == 1 {
				return "README.md:1: MD041 first line heading\n", nil
			}
			return "", nil
		case "fix":
			return "", nil
		}
		t.Fatalf("unexpected command %q", args[0])
		return "", nil
	}

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 2, scans)
}

func TestRunReportsRemainingIssues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"))

	l := NewLinter(root, nil, observability.NewPrinter(io.Discard))
	l.run = func(ctx context.Context, args ...string) (string, error) {
		if args[0] == "scan" {
			return "README.md:1: MD041\nREADME.md:9: MD012\n", nil
		}
		return "", nil
	}

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 markdown issues remain")
}

func TestRunNoMarkdownFiles(t *testing.T) {
	l := NewLinter(t.TempDir(), nil, observability.NewPrinter(io.Discard))
	l.run = func(ctx context.Context, args ...string) (string, error) {
		t.Fatal("linter should not run without files")
		return "", nil
	}
	require.NoError(t, l.Run(context.Background()))
}
