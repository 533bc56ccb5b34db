package learning

import (
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/contextweave/contextweave/internal/store"
)

// enhancedPromptPrefixLen bounds how much of an assembled prompt is stored
// back into the corpus. The prefix carries the base prompt plus the injected
// context, which is what future retrievals should match against.
const enhancedPromptPrefixLen = 500

// Recorder grows the context corpus from completed interactions.
type Recorder struct {
	store *store.Store
}

// NewRecorder creates a recorder writing into the given store.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// Learn stores a completed interaction as two new context entries: the raw
// user message under contextType, and a truncated prefix of the enhanced
// prompt under "<contextType>_enhanced". This is corpus growth, not parameter
// adaptation. Failures are logged and swallowed; learning must never break
// the interaction that triggered it.
func (r *Recorder) Learn(userMessage, enhancedPrompt string, qualityScore float64, contextType string) {
	quality := fmt.Sprintf("%.2f", qualityScore)

	if _, err := r.store.Add(userMessage, contextType, store.AddOptions{
		Metadata: map[string]string{"quality": quality},
	}); err != nil {
		log.Printf("Warning: failed to learn user message: %v", err)
	}

	prefix := truncateToRuneBoundary(enhancedPrompt, enhancedPromptPrefixLen)
	if prefix == "" {
		return
	}

	if _, err := r.store.Add(prefix, contextType+"_enhanced", store.AddOptions{
		Metadata: map[string]string{"quality": quality},
	}); err != nil {
		log.Printf("Warning: failed to learn enhanced prompt: %v", err)
	}
}

// truncateToRuneBoundary cuts s to at most max bytes without splitting a
// multi-byte rune.
func truncateToRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
