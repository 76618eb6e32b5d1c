package docsync

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jaipkapoor99/the-automaton/internal/config"
)

// Target pairs one generated report file with its destination document.
type Target struct {
	Name       string
	SourcePath string
	DocID      string
	// DocIDName is the environment variable that supplies DocID, named in
	// the error when it is unset.
	DocIDName string
}

// Targets returns the per-platform report-to-document pairs.
func Targets(cfg *config.Config) []Target {
	return []Target{
		{Name: "Codeforces", SourcePath: cfg.Abs(cfg.Outputs.Codeforces), DocID: cfg.DocIDCodeforces, DocIDName: "GOOGLE_DOC_CODEFORCES_ID"},
		{Name: "LeetCode", SourcePath: cfg.Abs(cfg.Outputs.LeetCode), DocID: cfg.DocIDLeetCode, DocIDName: "GOOGLE_DOC_LEETCODE_ID"},
		{Name: "Steam", SourcePath: cfg.Abs(cfg.Outputs.Steam), DocID: cfg.DocIDSteam, DocIDName: "GOOGLE_DOC_STEAM_ID"},
		{Name: "YouTube", SourcePath: cfg.Abs(cfg.Outputs.YouTube), DocID: cfg.DocIDYouTube, DocIDName: "GOOGLE_DOC_YOUTUBE_ID"},
		{Name: "Chess.com", SourcePath: cfg.Abs(cfg.Outputs.ChessCom), DocID: cfg.DocIDChessCom, DocIDName: "GOOGLE_DOC_CHESSCOM_ID"},
	}
}

// SyncTarget reads the target's report file and syncs it to its document.
func (e *Engine) SyncTarget(ctx context.Context, t Target) error {
	if t.DocID == "" {
		return fmt.Errorf("%s document ID not set: set %s in your .env file", t.Name, t.DocIDName)
	}
	data, err := os.ReadFile(t.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to read report file %s: %w", t.SourcePath, err)
	}
	e.printer.Progress("Syncing %s report to Google Doc...", t.Name)
	if err := e.Sync(ctx, t.DocID, string(data)); err != nil {
		return err
	}
	e.printer.Progress("Successfully synced %s report.", t.Name)
	return nil
}

// SyncAll syncs every target, continuing past per-target failures and
// reporting them collectively.
func (e *Engine) SyncAll(ctx context.Context, targets []Target) error {
	var failed []string
	for _, t := range targets {
		if err := e.SyncTarget(ctx, t); err != nil {
			e.printer.Progress("[ERROR] %s sync failed: %v", t.Name, err)
			failed = append(failed, t.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to sync: %s", strings.Join(failed, ", "))
	}
	return nil
}
