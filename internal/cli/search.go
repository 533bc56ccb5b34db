package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
	"github.com/contextweave/contextweave/internal/retriever"
)

// NewSearchCmd creates the 'search' command for similarity queries.
func NewSearchCmd() *cobra.Command {
	var (
		configPath    string
		contextType   string
		limit         int
		minSimilarity float64
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find stored context similar to a query",
		Example: `  contextweave search "how to cache data"
  contextweave search "scaling strategies" --type ops --limit 5
  contextweave search "anything" --min-similarity -1  # disable the floor
  contextweave search "pooling" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withEngine(configPath, func(e *engine.Engine) error {
				entries, err := e.FindSimilar(query, retriever.Options{
					ContextType:   contextType,
					Limit:         limit,
					MinSimilarity: minSimilarity,
				})
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}

				if jsonOutput {
					return json.NewEncoder(os.Stdout).Encode(entries)
				}

				if len(entries) == 0 {
					fmt.Println("No matching context found.")
					return nil
				}

				fmt.Printf("Found %d matching entries:\n\n", len(entries))
				for i, entry := range entries {
					fmt.Printf("  %d. [%.2f] (%s) %s\n", i+1, entry.SimilarityScore, entry.ContextType, entry.Text)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "", "Restrict to one context type")
	cmd.Flags().IntVarP(&limit, "limit", "l", 5, "Maximum number of results")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "Similarity floor (negative disables)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
