// Package fileops handles repository-local file chores: ensuring files exist
// before they are read and clearing the temp directory between runs.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

// EnsureFile creates path as an empty file, along with its parent directory,
// when it does not already exist. An empty path is a no-op.
func EnsureFile(path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f.Close()
}

// Manager clears temp-directory contents.
type Manager struct {
	tempDir string
	printer *observability.Printer
}

// NewManager creates a file manager for the given temp directory.
func NewManager(tempDir string, printer *observability.Printer) *Manager {
	return &Manager{tempDir: tempDir, printer: printer}
}

// ClearTempDir truncates every regular file in the temp directory, preserving
// .gitignore. Files are emptied rather than removed so the directory layout
// stays intact.
func (m *Manager) ClearTempDir() error {
	m.printer.Progress("Clearing Temp directory...")
	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		return fmt.Errorf("temp directory not found at %s: %w", m.tempDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.EqualFold(entry.Name(), ".gitignore") {
			continue
		}
		path := filepath.Join(m.tempDir, entry.Name())
		if err := os.Truncate(path, 0); err != nil {
			m.printer.Progress("Failed to clear %s. Reason: %v", path, err)
			continue
		}
		m.printer.Progress("Cleared content of: %s", entry.Name())
	}

	m.printer.Progress("Successfully cleared Temp directory.")
	return nil
}
