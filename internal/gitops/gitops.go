// Package gitops commits and pushes the repository using the system git
// binary. The commit message comes from a message file where comment lines
// and blank lines are ignored.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jaipkapoor99/the-automaton/internal/fileops"
	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

// ErrEmptyCommitMessage is returned when the message file holds only comments
// and blank lines.
var ErrEmptyCommitMessage = errors.New("no valid commit message found in commit message file")

// Manager runs git operations rooted at the repository directory.
type Manager struct {
	rootDir     string
	messageFile string
	printer     *observability.Printer

	// run executes one git command; swapped out in tests.
	run func(ctx context.Context, args ...string) error
}

// NewManager creates a git manager for rootDir.
func NewManager(rootDir, messageFile string, printer *observability.Printer) *Manager {
	m := &Manager{
		rootDir:     rootDir,
		messageFile: messageFile,
		printer:     printer,
	}
	m.run = m.git
	return m
}

// CommitMessage reads the commit message from the message file, dropping
// blank lines and lines starting with '#'.
func (m *Manager) CommitMessage() (string, error) {
	if err := fileops.EnsureFile(m.messageFile); err != nil {
		return "", err
	}
	data, err := os.ReadFile(m.messageFile)
	if err != nil {
		return "", fmt.Errorf("failed to read commit message file %s: %w", m.messageFile, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", ErrEmptyCommitMessage
	}
	return strings.Join(lines, "\n"), nil
}

// CommitAndPush stages all changes, commits with the message-file message,
// and pushes to the remote.
func (m *Manager) CommitAndPush(ctx context.Context) error {
	m.printer.Progress("Starting Git operations...")

	message, err := m.CommitMessage()
	if err != nil {
		return err
	}

	m.printer.Progress("Adding all changes to Git...")
	if err := m.run(ctx, "add", "."); err != nil {
		return err
	}

	m.printer.Progress("Committing with message:\n%s", message)
	if err := m.run(ctx, "commit", "-m", message); err != nil {
		return err
	}

	m.printer.Progress("Pushing to remote repository...")
	if err := m.run(ctx, "push"); err != nil {
		return err
	}

	m.printer.Progress("SUCCESS: Git operations completed successfully.")
	return nil
}

func (m *Manager) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = m.rootDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w\n%s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
