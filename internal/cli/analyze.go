package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
)

// NewAnalyzeCmd creates the 'analyze' command over the outcome log.
func NewAnalyzeCmd() *cobra.Command {
	var (
		configPath string
		window     time.Duration
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Derive insights from recorded interaction outcomes",
		Long: `Aggregate the performance event log into averages, per-section
effectiveness grades, correlation insights, and ranked recommendations.`,
		Example: `  contextweave analyze
  contextweave analyze --window 168h  # last week only
  contextweave analyze --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(configPath, func(e *engine.Engine) error {
				analysis, err := e.Analyze(window)
				if err != nil {
					return fmt.Errorf("analyze: %w", err)
				}

				if jsonOutput {
					return json.NewEncoder(os.Stdout).Encode(analysis)
				}

				fmt.Printf("Analyzed %d events\n\n", analysis.Events)
				if analysis.Events == 0 {
					fmt.Println("No outcomes recorded yet.")
					return nil
				}

				fmt.Printf("Mean context size:   %.0f chars\n", analysis.MeanContextSize)
				fmt.Printf("Mean response time:  %.0f ms\n", analysis.MeanResponseTimeMs)
				if analysis.SatisfactionSamples > 0 {
					fmt.Printf("Mean satisfaction:   %.2f (%d samples)\n", analysis.MeanSatisfaction, analysis.SatisfactionSamples)
				}

				if len(analysis.SectionEffectiveness) > 0 {
					fmt.Println("\nSection effectiveness:")
					for section, grade := range analysis.SectionEffectiveness {
						fmt.Printf("  %-24s %s\n", section, grade)
					}
				}

				if len(analysis.Insights) > 0 {
					fmt.Println("\nInsights:")
					for _, insight := range analysis.Insights {
						fmt.Printf("  - %s (r=%.2f, confidence %.2f, n=%d)\n",
							insight.Description, insight.Correlation, insight.Confidence, insight.Samples)
					}
				}

				if len(analysis.Recommendations) > 0 {
					fmt.Println("\nRecommendations:")
					for _, rec := range analysis.Recommendations {
						fmt.Printf("  %d. %s\n     %s\n", rec.Priority, rec.Action, rec.Reason)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().DurationVarP(&window, "window", "w", 0, "Trailing time window (0 analyzes everything)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
