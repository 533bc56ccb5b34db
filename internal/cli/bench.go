package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/benchmark"
	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/engine"
)

// NewBenchCmd creates the 'bench' command. It runs against a scratch
// database so the real context store is never polluted with seed entries.
func NewBenchCmd() *cobra.Command {
	var entries int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark search and enhancement latency",
		Example: `  contextweave bench
  contextweave bench --entries 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.MkdirTemp("", "contextweave-bench-*")
			if err != nil {
				return fmt.Errorf("create scratch dir: %w", err)
			}
			defer os.RemoveAll(dir)

			cfg := config.Default()
			cfg.DBPath = filepath.Join(dir, "context.db")
			cfg.EventLogPath = filepath.Join(dir, "events.db")

			e, err := engine.New(cfg)
			if err != nil {
				return fmt.Errorf("assemble engine: %w", err)
			}
			defer e.Close()

			fmt.Printf("Seeding %d entries...\n", entries)
			result, err := benchmark.Run(e, entries)
			if err != nil {
				return fmt.Errorf("benchmark: %w", err)
			}

			fmt.Print(benchmark.FormatResult(result))
			return nil
		},
	}

	cmd.Flags().IntVarP(&entries, "entries", "n", 100, "Number of entries to seed")

	return cmd
}
