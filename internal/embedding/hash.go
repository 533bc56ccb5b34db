package embedding

import (
	"hash/fnv"
	"math"
)

// HashEmbedder generates deterministic embeddings from a text hash.
//
// The FNV-64a hash of the text seeds a linear congruential generator that
// fills the configured dimension, and the result is normalized to a unit
// vector. Identical text always yields a bit-identical vector. The semantic
// quality is far below a trained model; callers must not expect retrieval
// parity between the two strategies.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder producing vectors of the given size.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	return &HashEmbedder{dimensions: dimensions}
}

// Embed creates a deterministic embedding from text. It never fails.
func (h *HashEmbedder) Embed(text string) ([]float32, error) {
	hasher := fnv.New64a()
	hasher.Write([]byte(text))
	seed := hasher.Sum64()

	embedding := make([]float32, h.dimensions)
	for i := 0; i < h.dimensions; i++ {
		// Knuth's MMIX LCG constants
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (h *HashEmbedder) Dimensions() int {
	return h.dimensions
}
