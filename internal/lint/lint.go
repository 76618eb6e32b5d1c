// Package lint scans and auto-fixes the repository's Markdown files using the
// external pymarkdown tool.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

// linterBinary is the external Markdown linter invoked for scan and fix.
const linterBinary = "pymarkdown"

// Linter finds Markdown files and drives pymarkdown over them.
type Linter struct {
	rootDir      string
	excludedDirs []string
	printer      *observability.Printer

	// run executes pymarkdown with the given arguments and returns its
	// stdout; swapped out in tests. A nonzero exit with output is not an
	// error for scans, which exit nonzero whenever issues exist.
	run func(ctx context.Context, args ...string) (string, error)
}

// NewLinter creates a Markdown linter rooted at rootDir. excludedDirs are
// directory names skipped during the file walk.
func NewLinter(rootDir string, excludedDirs []string, printer *observability.Printer) *Linter {
	l := &Linter{
		rootDir:      rootDir,
		excludedDirs: excludedDirs,
		printer:      printer,
	}
	l.run = l.pymarkdown
	return l
}

// Run lints every Markdown file, attempts automatic fixes, and rescans. It
// fails when issues remain after fixing, or when the linter is unavailable.
func (l *Linter) Run(ctx context.Context) error {
	files, err := l.markdownFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		l.printer.Progress("No Markdown files found to lint.")
		return nil
	}
	l.printer.Progress("Found %d Markdown files to lint and fix.", len(files))

	initial, err := l.run(ctx, append([]string{"scan"}, files...)...)
	if err != nil {
		return err
	}
	initialCount := countLines(initial)
	if initialCount > 0 {
		l.printer.Progress("[INFO] Found %d initial markdown issues.", initialCount)
		l.printer.Progress("----- Initial Issues -----")
		l.printer.Progress("%s", strings.TrimSpace(initial))
		l.printer.Progress("--------------------------")
	}

	l.printer.Progress("\n[INFO] Attempting to automatically fix issues...")
	if _, err := l.run(ctx, append([]string{"fix"}, files...)...); err != nil {
		l.printer.Progress("[WARNING] The '%s fix' command encountered an error: %v", linterBinary, err)
	}

	l.printer.Progress("\n[INFO] Re-scanning files after fix attempt...")
	remaining, err := l.run(ctx, append([]string{"scan"}, files...)...)
	if err != nil {
		return err
	}
	remainingCount := countLines(remaining)

	if fixed := initialCount - remainingCount; fixed > 0 {
		l.printer.Progress("[SUCCESS] Automatically fixed %d markdown issue(s).", fixed)
	}
	if remainingCount > 0 {
		l.printer.Progress("\n[WARNING] %d markdown issues remain:", remainingCount)
		l.printer.Progress("----- Remaining Issues -----")
		l.printer.Progress("%s", strings.TrimSpace(remaining))
		l.printer.Progress("----------------------------")
		return fmt.Errorf("%d markdown issues remain after fixing", remainingCount)
	}

	l.printer.Progress("\n[SUCCESS] All Markdown files are valid.")
	return nil
}

// markdownFiles walks the repository collecting .md files, skipping excluded
// directories.
func (l *Linter) markdownFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if slices.Contains(l.excludedDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", l.rootDir, err)
	}
	return files, nil
}

func (l *Linter) pymarkdown(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, linterBinary, args...)
	out, err := cmd.Output()
	if err != nil {
		// Scans exit nonzero when issues are found; the output is still
		// the result.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), nil
		}
		return "", fmt.Errorf("'%s' command not found or failed to start, ensure it is installed and in your PATH: %w", linterBinary, err)
	}
	return string(out), nil
}

func countLines(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return len(strings.Split(s, "\n"))
}
