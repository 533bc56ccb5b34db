/*
Package main is the entry point for the contextweave CLI.

contextweave is a semantic context engine: it stores text as embeddings,
retrieves relevant context for a query, splices that context into prompts,
and learns from interaction outcomes.

Usage:
  contextweave [command]

Available Commands:
  init        Write a default configuration file
  add         Store a context entry
  search      Find stored context similar to a query
  list        List stored context entries
  enhance     Splice relevant context into a prompt
  learn       Grow the corpus from a completed interaction
  outcome     Record an interaction outcome
  stats       Show context store statistics
  clear       Delete stored context entries
  analyze     Derive insights from recorded interaction outcomes
  import      Bulk-import text files as context entries
  watch       Watch a directory and re-import changed files
  bench       Benchmark search and enhancement latency
  version     Show version information

Examples:
  # Store and retrieve context
  contextweave add "Redis caching reduces database load" --type perf
  contextweave search "how to cache data" --type perf

  # Augment a prompt with relevant context
  contextweave enhance "how do I cache data" --prompt "You are a helpful assistant."
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/cli"
	"github.com/contextweave/contextweave/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contextweave",
		Short: "Semantic context engine for AI prompts",
		Long: `contextweave stores text as vector embeddings and retrieves it by
semantic similarity. Retrieved context is spliced into outgoing prompts so
an AI agent can draw on past conversations, preferences, and notes.

The engine degrades gracefully: without an embedding model it falls back to
deterministic hash vectors, without the accelerated index it scans linearly,
and without a writable database it runs as a transparent no-op.`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(cli.NewInitCmd())
	rootCmd.AddCommand(cli.NewAddCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewListCmd())
	rootCmd.AddCommand(cli.NewEnhanceCmd())
	rootCmd.AddCommand(cli.NewLearnCmd())
	rootCmd.AddCommand(cli.NewOutcomeCmd())
	rootCmd.AddCommand(cli.NewStatsCmd())
	rootCmd.AddCommand(cli.NewClearCmd())
	rootCmd.AddCommand(cli.NewAnalyzeCmd())
	rootCmd.AddCommand(cli.NewImportCmd())
	rootCmd.AddCommand(cli.NewWatchCmd())
	rootCmd.AddCommand(cli.NewBenchCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
