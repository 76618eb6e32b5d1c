// Package main provides the entry point for the automaton workflow CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jaipkapoor99/the-automaton/internal/config"
	"github.com/jaipkapoor99/the-automaton/internal/observability"
	"github.com/jaipkapoor99/the-automaton/internal/workflow"
)

var rootDir string

var rootCmd = &cobra.Command{
	Use:   "automaton <workflow>",
	Short: "Personal data aggregation and publishing pipeline",
	Long: "Automaton pulls activity data from Codeforces, LeetCode, Steam, YouTube, and Chess.com,\n" +
		"renders each into a text report, and publishes the reports to Google Docs and a local mirror.\n\n" +
		"Workflows:\n  " + strings.Join(kindNames(), "\n  "),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWorkflow,
}

func init() {
	rootCmd.Flags().StringVar(&rootDir, "root", ".", "Repository root containing config.yaml")
}

func kindNames() []string {
	kinds := workflow.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func runWorkflow(_ *cobra.Command, args []string) error {
	printer := observability.NewPrinter(os.Stdout)

	kind, err := workflow.ParseKind(args[0])
	if err != nil {
		return fmt.Errorf("[ERROR] %w", err)
	}

	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}

	if err := workflow.NewRunner(cfg, printer).Run(context.Background(), kind); err != nil {
		printer.Progress("%v", err)
		printer.Failure(string(kind))
		return err
	}
	printer.Success(string(kind))
	return nil
}

func main() {
	// Secrets and identifiers come from a .env file when present.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
