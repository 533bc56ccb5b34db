/*
Package prompt merges retrieved context into an outgoing prompt.

Enhancement is strictly best-effort: whatever goes wrong during retrieval or
rendering, the caller always gets a usable prompt back. The typed status on
the result distinguishes "nothing relevant found" from "search subsystem
broken" without making either a hard failure.
*/
package prompt

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/contextweave/contextweave/internal/retriever"
	"github.com/contextweave/contextweave/internal/store"
)

// Status classifies an enhancement outcome.
type Status string

const (
	// StatusEnhanced means context was found and spliced into the prompt.
	StatusEnhanced Status = "enhanced"

	// StatusNoContext means retrieval worked but nothing relevant was found;
	// the base prompt is returned unchanged.
	StatusNoContext Status = "no_context"

	// StatusDegraded means retrieval or rendering failed; the base prompt is
	// returned unchanged and the failure was logged.
	StatusDegraded Status = "degraded"
)

// Result is an enhancement outcome.
type Result struct {
	// Prompt is the augmented prompt, or the base prompt verbatim when
	// Status is not StatusEnhanced.
	Prompt string

	// Status classifies the outcome.
	Status Status

	// Matches is the number of context fragments spliced in.
	Matches int
}

// anchorMarkers is the ordered list of insertion points searched in the base
// prompt. This is a best-effort heuristic, not a structural parser: the
// context section lands before the first marker found, and marker-free
// prompts degrade to a simple append.
var anchorMarkers = []string{
	"## Instructions",
	"# Instructions",
	"[END OF PROMPT]",
}

const (
	sectionHeader = "---- Relevant context ----"
	sectionFooter = "---- End of relevant context ----"
)

// Assembler splices retrieved context into base prompts.
type Assembler struct {
	retriever  *retriever.Retriever
	maxResults int
}

// New creates an assembler retrieving at most maxResults fragments per prompt.
func New(r *retriever.Retriever, maxResults int) *Assembler {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Assembler{retriever: r, maxResults: maxResults}
}

// Enhance retrieves context relevant to userMessage and splices it into
// basePrompt. On any failure the base prompt comes back unchanged with
// StatusDegraded; enhancement is never a hard dependency for producing a
// response.
func (a *Assembler) Enhance(basePrompt, userMessage, contextType string, similarityThreshold float64) Result {
	entries, err := a.retriever.FindSimilar(userMessage, retriever.Options{
		ContextType:   contextType,
		Limit:         a.maxResults,
		MinSimilarity: similarityThreshold,
	})
	if err != nil {
		log.Printf("Warning: context retrieval failed, returning base prompt: %v", err)
		return Result{Prompt: basePrompt, Status: StatusDegraded}
	}

	if len(entries) == 0 {
		return Result{Prompt: basePrompt, Status: StatusNoContext}
	}

	section := renderSection(entries)

	return Result{
		Prompt:  splice(basePrompt, section),
		Status:  StatusEnhanced,
		Matches: len(entries),
	}
}

// renderSection formats entries into a delimited context block.
func renderSection(entries []store.Entry) string {
	var b strings.Builder
	b.WriteString(sectionHeader)
	b.WriteString("\n")

	for i, entry := range entries {
		fmt.Fprintf(&b, "[%d] (similarity %.2f) %s\n", i+1, entry.SimilarityScore, entry.Text)
		if meta := flattenMetadata(entry.Metadata); meta != "" {
			fmt.Fprintf(&b, "    %s\n", meta)
		}
	}

	b.WriteString(sectionFooter)
	return b.String()
}

// flattenMetadata renders a metadata map as sorted key=value pairs.
func flattenMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+metadata[k])
	}
	return strings.Join(pairs, " ")
}

// splice inserts the section before the first anchor marker found, or
// appends it when no marker exists.
func splice(basePrompt, section string) string {
	for _, marker := range anchorMarkers {
		if idx := strings.Index(basePrompt, marker); idx >= 0 {
			return basePrompt[:idx] + section + "\n\n" + basePrompt[idx:]
		}
	}
	return basePrompt + "\n\n" + section
}
