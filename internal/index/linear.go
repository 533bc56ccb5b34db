package index

import (
	"fmt"
	"sort"
)

// LinearIndex is the fallback strategy: no auxiliary structure, every query
// recomputes cosine similarity against vectors fetched from the source and
// sorts descending. It never goes stale because it reads the store directly,
// at the cost of a full scan per query.
type LinearIndex struct {
	source VectorSource
}

// NewLinearIndex creates a fallback index over the given source.
func NewLinearIndex(source VectorSource) *LinearIndex {
	return &LinearIndex{source: source}
}

// Add is a no-op; the source already holds the vector.
func (l *LinearIndex) Add(id string, vector []float32) error {
	return nil
}

// Search scans every vector in the source and returns the topK by cosine
// similarity, descending.
func (l *LinearIndex) Search(query []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	records, err := l.source.ListVectors()
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}

	matches := make([]Match, 0, len(records))
	for _, record := range records {
		matches = append(matches, Match{
			ID:    record.ID,
			Score: cosineSimilarity(query, record.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// Reset is a no-op; the source owns the data.
func (l *LinearIndex) Reset() error {
	return nil
}

// Size returns the number of vectors in the source.
func (l *LinearIndex) Size() int {
	records, err := l.source.ListVectors()
	if err != nil {
		return 0
	}
	return len(records)
}
