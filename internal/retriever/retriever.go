/*
Package retriever ranks stored context against a free-text query.

The retriever overfetches from the similarity index, re-resolves every
candidate against the persistent store, and filters post-hoc: entries whose
context type does not match, whose id no longer exists (stale index entries
survive deletions by design), or whose score falls below the similarity floor
are dropped before ranking.
*/
package retriever

import (
	"fmt"
	"sort"

	"github.com/contextweave/contextweave/internal/embedding"
	"github.com/contextweave/contextweave/internal/index"
	"github.com/contextweave/contextweave/internal/store"
)

// overfetchFactor compensates for candidates lost to post-filtering.
const overfetchFactor = 2

// Options controls a similarity query.
type Options struct {
	// ContextType restricts results to one category when non-empty.
	ContextType string

	// Limit caps the number of returned entries.
	Limit int

	// MinSimilarity drops entries scoring below it. Pass -1 (or lower) to
	// disable the floor entirely.
	MinSimilarity float64
}

// Retriever issues similarity queries over the store and index.
type Retriever struct {
	embedder embedding.Embedder
	store    *store.Store
	idx      index.Index
}

// New creates a retriever over the given components.
func New(embedder embedding.Embedder, entryStore *store.Store, idx index.Index) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    entryStore,
		idx:      idx,
	}
}

// FindSimilar returns up to opts.Limit entries ranked by similarity to the
// query, each with its SimilarityScore populated. An empty store, a degraded
// embedder, or filtering that eliminates everything all yield an empty slice
// and no error; an error means the search subsystem itself failed.
func (r *Retriever) FindSimilar(query string, opts Options) ([]store.Entry, error) {
	if opts.Limit <= 0 {
		return []store.Entry{}, nil
	}

	queryVector, err := r.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.idx.Search(queryVector, opts.Limit*overfetchFactor)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	entries := make([]store.Entry, 0, len(matches))
	for _, match := range matches {
		entry, err := r.store.Get(match.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve candidate: %w", err)
		}
		if entry == nil {
			// Stale index entry: deleted from the store but still indexed.
			continue
		}
		if opts.ContextType != "" && entry.ContextType != opts.ContextType {
			continue
		}
		if match.Score < opts.MinSimilarity {
			continue
		}

		entry.SimilarityScore = match.Score
		entries = append(entries, *entry)
	}

	// Rank by score descending; ties break toward the earlier entry since no
	// secondary ranking signal exists.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SimilarityScore != entries[j].SimilarityScore {
			return entries[i].SimilarityScore > entries[j].SimilarityScore
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	if len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	return entries, nil
}
