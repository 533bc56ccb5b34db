package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
)

// NewLearnCmd creates the 'learn' command for feeding an interaction back
// into the corpus.
func NewLearnCmd() *cobra.Command {
	var (
		configPath     string
		contextType    string
		enhancedPrompt string
		quality        float64
	)

	cmd := &cobra.Command{
		Use:   "learn [message]",
		Short: "Grow the corpus from a completed interaction",
		Long: `Store a completed interaction as new context: the raw user message and a
prefix of the enhanced prompt that served it. Future retrievals can then
match against both.`,
		Example: `  contextweave learn "How do I scale?" --quality 0.9 --type ops
  contextweave learn "Cache question" --enhanced "Enhanced: Cache question..." --quality 0.7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return withEngine(configPath, func(e *engine.Engine) error {
				e.Learn(message, enhancedPrompt, quality, contextType)
				fmt.Printf("Learned interaction (type: %s, quality: %.2f)\n", contextType, quality)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "conversation", "Context type label")
	cmd.Flags().StringVar(&enhancedPrompt, "enhanced", "", "The enhanced prompt that served the interaction")
	cmd.Flags().Float64VarP(&quality, "quality", "q", 0.5, "Interaction quality score (0-1)")

	return cmd
}
