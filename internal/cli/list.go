package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
)

// NewListCmd creates the 'list' command for browsing stored entries.
func NewListCmd() *cobra.Command {
	var (
		configPath  string
		contextType string
		limit       int
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored context entries",
		Long: `List stored context entries newest first, optionally restricted to one
context type. Unlike search, listing does not rank by similarity.`,
		Example: `  contextweave list
  contextweave list --type perf --limit 10
  contextweave list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(configPath, func(e *engine.Engine) error {
				entries, err := e.List(contextType, limit)
				if err != nil {
					return fmt.Errorf("list: %w", err)
				}

				if jsonOutput {
					return json.NewEncoder(os.Stdout).Encode(entries)
				}

				if len(entries) == 0 {
					fmt.Println("No stored context.")
					return nil
				}

				fmt.Printf("Showing %d entries (newest first):\n\n", len(entries))
				for i, entry := range entries {
					fmt.Printf("  %d. [%s] (%s) %s\n", i+1, entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.ContextType, entry.Text)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "", "Restrict to one context type")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of entries (0 lists everything)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
