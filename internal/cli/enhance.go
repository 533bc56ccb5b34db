package cli

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
)

// NewEnhanceCmd creates the 'enhance' command for prompt augmentation.
func NewEnhanceCmd() *cobra.Command {
	var (
		configPath  string
		contextType string
		basePrompt  string
		promptFile  string
		threshold   float64
	)

	cmd := &cobra.Command{
		Use:   "enhance [message]",
		Short: "Splice relevant context into a prompt",
		Long: `Retrieve context relevant to the message and splice it into the base
prompt. The base prompt passes through unchanged when nothing relevant is
found or retrieval fails.`,
		Example: `  contextweave enhance "how do I cache data" --prompt "You are a helpful assistant."
  contextweave enhance "scaling question" --prompt-file prompt.txt --type ops
  contextweave enhance "anything" --prompt "Base." --threshold -1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			base := basePrompt
			if promptFile != "" {
				data, err := os.ReadFile(promptFile)
				if err != nil {
					return fmt.Errorf("read prompt file: %w", err)
				}
				base = string(data)
			}
			if base == "" {
				return fmt.Errorf("a base prompt is required (--prompt or --prompt-file)")
			}

			return withEngine(configPath, func(e *engine.Engine) error {
				result := e.Enhance(base, message, contextType, threshold)
				fmt.Fprintf(os.Stderr, "Status: %s (%d context fragments)\n", result.Status, result.Matches)
				fmt.Println(result.Prompt)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "", "Restrict context to one type")
	cmd.Flags().StringVarP(&basePrompt, "prompt", "p", "", "Base prompt text")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "Read the base prompt from a file")
	cmd.Flags().Float64Var(&threshold, "threshold", math.NaN(), "Similarity floor (defaults to the configured value, negative disables)")

	return cmd
}
