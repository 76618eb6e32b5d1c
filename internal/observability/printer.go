// Package observability provides formatted progress output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
)

// headerWidth is the width of a section header rule.
const headerWidth = 20

// Printer handles human-readable progress output.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// SectionHeader prints an upper-cased banner for the next workflow phase.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) SectionHeader(title string) {
	rule := strings.Repeat("=", headerWidth)
	fmt.Fprintf(p.out, "\n%s\n", rule)
	fmt.Fprintf(p.out, " %s \n", strings.ToUpper(title))
	fmt.Fprintf(p.out, "%s\n", rule)
}

// Progress prints a single progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Progress(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints the final success trailer for a workflow.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Success(workflow string) {
	fmt.Fprintf(p.out, "\n[SUCCESS] Workflow '%s' completed successfully.\n", workflow)
}

// Failure prints the final failure trailer for a workflow.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Failure(workflow string) {
	fmt.Fprintf(p.out, "\n[ERROR] Workflow '%s' failed.\n", workflow)
}
