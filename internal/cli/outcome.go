package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
	"github.com/contextweave/contextweave/internal/learning"
)

// NewOutcomeCmd creates the 'outcome' command for recording interaction
// outcomes, including late-arriving satisfaction scores.
func NewOutcomeCmd() *cobra.Command {
	var (
		configPath   string
		eventID      string
		contextSize  int
		responseTime float64
		satisfaction float64
		quality      float64
		sessionID    string
	)

	cmd := &cobra.Command{
		Use:   "outcome [message]",
		Short: "Record an interaction outcome",
		Long: `Record the outcome of one interaction for later analysis. Without --id a
new event is created and its id printed; with --id of an existing event the
given scores are merged into it, so satisfaction can arrive after the fact.`,
		Example: `  contextweave outcome "how do I scale" --context-size 200 --response-time 700
  contextweave outcome --id 4f7c... --satisfaction 0.9
  contextweave outcome "cache question" --quality 0.8 --session sess-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(configPath, func(e *engine.Engine) error {
				event := learning.PerformanceEvent{
					EventID:        eventID,
					UserMessage:    strings.Join(args, " "),
					ContextSize:    contextSize,
					ResponseTimeMs: responseTime,
					SessionID:      sessionID,
				}

				// Updating an existing event starts from its stored state so a
				// late score lands without wiping the original fields.
				if eventID != "" {
					existing, err := e.Outcome(eventID)
					if err != nil {
						return fmt.Errorf("look up event: %w", err)
					}
					if existing != nil {
						merged := *existing
						if event.UserMessage != "" {
							merged.UserMessage = event.UserMessage
						}
						if cmd.Flags().Changed("context-size") {
							merged.ContextSize = contextSize
						}
						if cmd.Flags().Changed("response-time") {
							merged.ResponseTimeMs = responseTime
						}
						if sessionID != "" {
							merged.SessionID = sessionID
						}
						event = merged
					}
				}

				if cmd.Flags().Changed("satisfaction") {
					event.UserSatisfaction = &satisfaction
				}
				if cmd.Flags().Changed("quality") {
					event.AIResponseQuality = &quality
				}

				id := e.RecordOutcome(event)
				fmt.Printf("Recorded outcome %s (%d queued)\n", id, e.PendingOutcomes())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&eventID, "id", "", "Event id to update (omit to create a new event)")
	cmd.Flags().IntVar(&contextSize, "context-size", 0, "Characters of context injected")
	cmd.Flags().Float64Var(&responseTime, "response-time", 0, "Response time in milliseconds")
	cmd.Flags().Float64Var(&satisfaction, "satisfaction", 0, "User satisfaction score (0-1)")
	cmd.Flags().Float64Var(&quality, "quality", 0, "AI response quality score (0-1)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session correlation id")

	return cmd
}
