// Package report builds the ordered text reports produced by the profile
// generators. A report is accumulated fully in memory and written to disk as
// one unit; readers never observe a partial write.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// separatorWidth is the width of the section separator line.
const separatorWidth = 40

// Builder accumulates report lines and numbers section headers.
type Builder struct {
	lines          []string
	sectionCounter int
}

// New creates an empty report builder. The section counter starts at 1.
func New() *Builder {
	return &Builder{sectionCounter: 1}
}

// Title appends the top-level report title and a generation timestamp.
func (b *Builder) Title(title string) {
	b.lines = append(b.lines, title)
	b.lines = append(b.lines, fmt.Sprintf("Generated on: %s", time.Now().Format("2006-01-02 15:04:05")))
}

// Section appends a separator line and a numbered section header, then
// increments the shared counter.
func (b *Builder) Section(title string) {
	b.lines = append(b.lines, "\n"+strings.Repeat("=", separatorWidth)+"\n")
	b.lines = append(b.lines, fmt.Sprintf("## %d. %s\n", b.sectionCounter, title))
	b.sectionCounter++
}

// Add appends a single line.
func (b *Builder) Add(line string) {
	b.lines = append(b.lines, line)
}

// Addf appends a formatted line.
func (b *Builder) Addf(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

// Len returns the number of accumulated lines.
func (b *Builder) Len() int {
	return len(b.lines)
}

// String joins the accumulated lines with newlines.
func (b *Builder) String() string {
	return strings.Join(b.lines, "\n")
}

// WriteFile writes the full report to path as a single whole-file write,
// creating the parent directory when needed.
func (b *Builder) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
