package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
)

// NewClearCmd creates the 'clear' command for deleting stored context.
func NewClearCmd() *cobra.Command {
	var (
		configPath  string
		contextType string
		noConfirm   bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored context entries",
		Long: `Delete every stored context entry, or only entries of one type when
--type is given. Clearing everything also resets the similarity index.`,
		Example: `  contextweave clear --type scratch
  contextweave clear --yes  # wipe everything without confirmation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !noConfirm {
				target := "ALL context entries"
				if contextType != "" {
					target = fmt.Sprintf("all %q entries", contextType)
				}
				fmt.Printf("Delete %s? [y/N] ", target)

				reader := bufio.NewReader(os.Stdin)
				response, _ := reader.ReadString('\n')
				response = strings.TrimSpace(strings.ToLower(response))
				if response != "y" && response != "yes" {
					fmt.Println("Cancelled.")
					return nil
				}
			}

			return withEngine(configPath, func(e *engine.Engine) error {
				if err := e.Clear(contextType); err != nil {
					return fmt.Errorf("clear: %w", err)
				}
				if contextType == "" {
					fmt.Println("Cleared all context entries.")
				} else {
					fmt.Printf("Cleared %q context entries.\n", contextType)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "", "Only clear entries of this type")
	cmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}
