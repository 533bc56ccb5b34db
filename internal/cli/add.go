package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
	"github.com/contextweave/contextweave/internal/store"
)

// NewAddCmd creates the 'add' command for storing a context entry.
func NewAddCmd() *cobra.Command {
	var (
		configPath  string
		contextType string
		sessionID   string
		userID      string
		metaPairs   []string
	)

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Store a context entry",
		Long: `Embed a piece of text and store it as a retrievable context entry.

Re-adding identical text with the same type and correlation ids overwrites
the existing entry instead of creating a duplicate.`,
		Example: `  contextweave add "Redis caching reduces database load" --type perf
  contextweave add "Prefer small interfaces" --type technical --meta source=review
  contextweave add "User prefers terse answers" --type preference --session sess-42 --user alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withEngine(configPath, func(e *engine.Engine) error {
				id, err := e.AddContext(text, contextType, store.AddOptions{
					SessionID: sessionID,
					UserID:    userID,
					Metadata:  parseMetadata(metaPairs),
				})
				if err != nil {
					return fmt.Errorf("add context: %w", err)
				}
				fmt.Printf("Added entry %s (type: %s)\n", id[:12], contextType)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "conversation", "Context type label")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session correlation id")
	cmd.Flags().StringVar(&userID, "user", "", "User correlation id")
	cmd.Flags().StringArrayVarP(&metaPairs, "meta", "m", nil, "Metadata (KEY=VALUE, repeatable)")

	return cmd
}
