/*
Package index provides nearest-neighbor search over stored vectors.

Two interchangeable strategies implement the same contract: an in-memory
chromem-go collection (accelerated mode, mirrored on every add) and a linear
cosine scan over vectors listed from the persistent store (fallback mode).

Score semantics: chromem scores are cosine similarity, and the linear scan
computes cosine similarity directly, so both modes report scores in [-1, 1].
This comparability holds only because the embedding layer normalizes every
vector to unit length; unnormalized input would silently skew accelerated
scores toward longer vectors.

The accelerated index does not see deletions. A removed id may still surface
from Search and is filtered out at retrieval time by re-resolving each
candidate against the store.
*/
package index

import "math"

// Match is a single search hit.
type Match struct {
	// ID identifies the stored entry.
	ID string

	// Score is the cosine similarity to the query vector.
	Score float64
}

// Index is the similarity search contract shared by both strategies.
type Index interface {
	// Add mirrors a vector into the index under the given id. Re-adding an
	// id replaces its vector.
	Add(id string, vector []float32) error

	// Search returns up to topK matches sorted by score descending.
	Search(query []float32, topK int) ([]Match, error)

	// Reset drops all indexed vectors.
	Reset() error

	// Size returns the number of indexed vectors.
	Size() int
}

// VectorRecord is an (id, vector) pair listed from a vector source.
type VectorRecord struct {
	ID     string
	Vector []float32
}

// VectorSource supplies vectors for the linear fallback strategy.
// The persistent entry store implements it.
type VectorSource interface {
	ListVectors() ([]VectorRecord, error)
}

// cosineSimilarity computes cosine similarity between two vectors.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
