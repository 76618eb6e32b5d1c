// Package workflow maps CLI workflow names to their handlers. Each run
// executes exactly one workflow to completion; there is no concurrency across
// workflows.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jaipkapoor99/the-automaton/internal/chesscom"
	"github.com/jaipkapoor99/the-automaton/internal/codeforces"
	"github.com/jaipkapoor99/the-automaton/internal/config"
	"github.com/jaipkapoor99/the-automaton/internal/docsync"
	"github.com/jaipkapoor99/the-automaton/internal/fileops"
	"github.com/jaipkapoor99/the-automaton/internal/gitops"
	"github.com/jaipkapoor99/the-automaton/internal/googleauth"
	"github.com/jaipkapoor99/the-automaton/internal/leetcode"
	"github.com/jaipkapoor99/the-automaton/internal/lint"
	"github.com/jaipkapoor99/the-automaton/internal/mirror"
	"github.com/jaipkapoor99/the-automaton/internal/observability"
	"github.com/jaipkapoor99/the-automaton/internal/perplexity"
	"github.com/jaipkapoor99/the-automaton/internal/steam"
	"github.com/jaipkapoor99/the-automaton/internal/youtube"
)

// Kind identifies one CLI workflow.
type Kind string

// The supported workflows.
const (
	KindCodeforces      Kind = "codeforces"
	KindLeetCode        Kind = "leetcode"
	KindSteamStats      Kind = "steam-stats"
	KindYouTube         Kind = "youtube"
	KindChessCom        Kind = "chess-com"
	KindGenerateAndSync Kind = "generate-and-sync-profiles"
	KindSyncCloud       Kind = "sync-cloud"
	KindSyncLocal       Kind = "sync-local"
	KindMarkdownLint    Kind = "markdown-lint"
	KindGitCommit       Kind = "git-commit"
	KindClearTemp       Kind = "clear-temp"
	KindPerplexity      Kind = "perplexity"
)

// Kinds lists every workflow in CLI help order.
func Kinds() []Kind {
	return []Kind{
		KindCodeforces,
		KindLeetCode,
		KindSteamStats,
		KindYouTube,
		KindChessCom,
		KindGenerateAndSync,
		KindSyncCloud,
		KindSyncLocal,
		KindMarkdownLint,
		KindGitCommit,
		KindClearTemp,
		KindPerplexity,
	}
}

// ParseKind resolves a CLI argument to a workflow kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown workflow: %s", s)
}

// Generator is the common capability of the five profile generators.
type Generator interface {
	Name() string
	Generate(ctx context.Context) error
}

// Runner executes workflows against one loaded configuration.
type Runner struct {
	cfg     *config.Config
	printer *observability.Printer
}

// NewRunner creates a workflow runner.
func NewRunner(cfg *config.Config, printer *observability.Printer) *Runner {
	return &Runner{cfg: cfg, printer: printer}
}

// Run executes one workflow to completion.
func (r *Runner) Run(ctx context.Context, kind Kind) error {
	r.printer.Progress("Run %s: workflow '%s'", uuid.NewString(), kind)

	switch kind {
	case KindCodeforces:
		return r.codeforcesGenerator().Generate(ctx)
	case KindLeetCode:
		return r.leetcodeGenerator().Generate(ctx)
	case KindSteamStats:
		return r.steamGenerator().Generate(ctx)
	case KindYouTube:
		gen, err := r.youtubeGenerator(ctx)
		if err != nil {
			return err
		}
		return gen.Generate(ctx)
	case KindChessCom:
		return r.chesscomGenerator().Generate(ctx)
	case KindGenerateAndSync:
		return r.generateAndSync(ctx)
	case KindSyncCloud:
		engine, err := r.syncEngine(ctx)
		if err != nil {
			return err
		}
		r.printer.SectionHeader("Cloud Sync")
		return engine.SyncAll(ctx, docsync.Targets(r.cfg))
	case KindSyncLocal:
		return mirror.NewSyncer(r.cfg.SharedDir(), r.cfg.LocalSyncDir, r.printer).Sync()
	case KindMarkdownLint:
		r.printer.SectionHeader("Markdown Linting")
		return lint.NewLinter(r.cfg.RootDir, r.cfg.Excluded.Dirs, r.printer).Run(ctx)
	case KindGitCommit:
		return gitops.NewManager(r.cfg.RootDir, r.cfg.Abs(r.cfg.Paths.CommitMessage), r.printer).CommitAndPush(ctx)
	case KindClearTemp:
		return fileops.NewManager(r.cfg.TempDir(), r.printer).ClearTempDir()
	case KindPerplexity:
		return r.perplexityClient().Run(ctx)
	default:
		return fmt.Errorf("unknown workflow: %s", kind)
	}
}

// generateAndSync runs every profile generator, then syncs all reports to
// their documents. A failed generator is reported and skipped; its previous
// report, if any, still syncs.
func (r *Runner) generateAndSync(ctx context.Context) error {
	generators := []Generator{
		r.codeforcesGenerator(),
		r.leetcodeGenerator(),
		r.steamGenerator(),
		r.chesscomGenerator(),
	}
	if gen, err := r.youtubeGenerator(ctx); err != nil {
		r.printer.Progress("[ERROR] youtube generator unavailable: %v", err)
	} else {
		generators = append(generators, gen)
	}

	var failed []string
	for _, gen := range generators {
		r.printer.SectionHeader(gen.Name())
		if err := gen.Generate(ctx); err != nil {
			r.printer.Progress("[ERROR] %s generation failed: %v", gen.Name(), err)
			failed = append(failed, gen.Name())
		}
	}

	engine, err := r.syncEngine(ctx)
	if err != nil {
		return err
	}
	r.printer.SectionHeader("Cloud Sync")
	syncErr := engine.SyncAll(ctx, docsync.Targets(r.cfg))

	if len(failed) > 0 {
		if syncErr != nil {
			return fmt.Errorf("generators failed (%s); %w", strings.Join(failed, ", "), syncErr)
		}
		return fmt.Errorf("generators failed: %s", strings.Join(failed, ", "))
	}
	return syncErr
}

func (r *Runner) codeforcesGenerator() Generator {
	client := codeforces.NewClient(r.cfg.Endpoints.Codeforces, r.cfg.CodeforcesAPIKey, r.cfg.CodeforcesAPISecret)
	return codeforces.NewGenerator(r.cfg.CodeforcesHandle, r.cfg.Abs(r.cfg.Outputs.Codeforces), client, r.printer)
}

func (r *Runner) leetcodeGenerator() Generator {
	return leetcode.NewGenerator(r.cfg.LeetCodeUsername, r.cfg.Endpoints.LeetCode, r.cfg.Abs(r.cfg.Outputs.LeetCode), r.printer)
}

func (r *Runner) steamGenerator() Generator {
	client := steam.NewClient(r.cfg.Endpoints.Steam, r.cfg.SteamAPIKey, r.cfg.SteamID)
	return steam.NewGenerator(r.cfg.SteamID, r.cfg.SteamAPIKey, r.cfg.Abs(r.cfg.Outputs.Steam), client, r.printer)
}

func (r *Runner) chesscomGenerator() Generator {
	return chesscom.NewGenerator(r.cfg.ChessComUsername, r.cfg.Abs(r.cfg.Outputs.ChessCom), chesscom.NewClient(r.cfg.Endpoints.ChessCom), r.printer)
}

func (r *Runner) youtubeGenerator(ctx context.Context) (Generator, error) {
	client, err := googleauth.New(r.cfg).Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := youtube.NewService(ctx, client)
	if err != nil {
		return nil, err
	}
	return youtube.NewGenerator(r.cfg.YouTubeChannelID, r.cfg.Abs(r.cfg.Outputs.YouTube), svc, r.printer), nil
}

func (r *Runner) syncEngine(ctx context.Context) (*docsync.Engine, error) {
	client, err := googleauth.New(r.cfg).Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := docsync.NewService(ctx, client)
	if err != nil {
		return nil, err
	}
	return docsync.NewEngine(svc, r.cfg.RetryInitialDelay, r.cfg.RetryMaxAttempts, r.printer), nil
}

func (r *Runner) perplexityClient() *perplexity.Client {
	return perplexity.NewClient(
		r.cfg.Endpoints.Perplexity,
		r.cfg.PerplexityAPIKey,
		r.cfg.Perplexity.Model,
		r.cfg.Perplexity.SystemPrompt,
		r.cfg.Abs(r.cfg.Perplexity.InputFile),
		r.cfg.Abs(r.cfg.Perplexity.OutputFile),
		r.printer,
	)
}
