// Package mirror copies the shared output directory to a configured local
// destination, overwriting whatever is already there.
package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

// destSubdir is the directory created under the configured destination root.
const destSubdir = "The-Automaton-Shared"

// Syncer mirrors one directory tree into another.
type Syncer struct {
	sourceDir string
	destRoot  string
	printer   *observability.Printer
}

// NewSyncer creates a mirror syncer. destRoot may be empty, which disables
// the mirror.
func NewSyncer(sourceDir, destRoot string, printer *observability.Printer) *Syncer {
	return &Syncer{sourceDir: sourceDir, destRoot: destRoot, printer: printer}
}

// Sync copies every entry of the source directory into destRoot/destSubdir.
// Existing destination entries are replaced. A missing source directory or an
// unconfigured destination is a warning, not a failure.
func (s *Syncer) Sync() error {
	if _, err := os.Stat(s.sourceDir); err != nil {
		s.printer.Progress("WARNING: Source directory '%s' not found. Skipping local sync.", s.sourceDir)
		return nil
	}
	if s.destRoot == "" {
		s.printer.Progress("WARNING: Local sync directory is not configured. Skipping local sync.")
		return nil
	}

	dest := filepath.Join(s.destRoot, destSubdir)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create mirror directory %s: %w", dest, err)
	}

	entries, err := os.ReadDir(s.sourceDir)
	if err != nil {
		return fmt.Errorf("failed to read source directory %s: %w", s.sourceDir, err)
	}
	for _, entry := range entries {
		src := filepath.Join(s.sourceDir, entry.Name())
		dst := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			// Replace the subtree wholesale so deleted files do not
			// linger in the mirror.
			if err := os.RemoveAll(dst); err != nil {
				return fmt.Errorf("failed to clear mirror entry %s: %w", dst, err)
			}
			if err := copyTree(src, dst); err != nil {
				return err
			}
		} else if err := copyFile(src, dst); err != nil {
			return err
		}
	}

	s.printer.Progress("Successfully synced '%s' directory to: %s", filepath.Base(s.sourceDir), dest)
	return nil
}

func copyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
		} else if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", dst, err)
	}
	return out.Close()
}
