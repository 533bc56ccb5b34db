package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
)

// NewStatsCmd creates the 'stats' command.
func NewStatsCmd() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show context store statistics",
		Example: `  contextweave stats
  contextweave stats --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(configPath, func(e *engine.Engine) error {
				stats, err := e.Stats()
				if err != nil {
					return fmt.Errorf("stats: %w", err)
				}

				if jsonOutput {
					return json.NewEncoder(os.Stdout).Encode(stats)
				}

				fmt.Printf("Context entries: %d\n", stats.Total)
				fmt.Printf("Index size:      %d\n", stats.IndexSize)
				if !stats.Oldest.IsZero() {
					fmt.Printf("Oldest:          %s\n", stats.Oldest.Format("2006-01-02 15:04:05"))
					fmt.Printf("Newest:          %s\n", stats.Newest.Format("2006-01-02 15:04:05"))
				}

				if len(stats.PerType) > 0 {
					fmt.Println("\nBy type:")
					types := make([]string, 0, len(stats.PerType))
					for t := range stats.PerType {
						types = append(types, t)
					}
					sort.Strings(types)
					for _, t := range types {
						fmt.Printf("  %-20s %d\n", t, stats.PerType[t])
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
