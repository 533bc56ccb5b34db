/*
Package embedding turns text into fixed-dimension vectors.

Two strategies implement the same contract: a pretrained ONNX sentence
embedder (available when built with the "onnx" tag and a model is configured)
and a deterministic hash embedder used as the degraded-mode fallback. The
strategy is selected once at construction; callers never re-check model
availability per call.

Every vector produced by either strategy is L2-normalized, so cosine
similarity and inner product agree regardless of which search path scores
them.
*/
package embedding

import (
	"log"
	"math"

	"github.com/contextweave/contextweave/internal/config"
)

// Embedder converts text to a vector of a fixed dimension.
type Embedder interface {
	// Embed returns the vector for text. Implementations must be
	// deterministic for identical input within one process.
	Embed(text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// New selects the embedding strategy for this process.
//
// When a model is configured and loads, the model path is used with the hash
// embedder as a per-call safety net. Otherwise the hash embedder is used
// directly; the downgrade is logged once here, not on every call.
func New(cfg *config.Config) Embedder {
	fallback := NewHashEmbedder(cfg.Dimensions)

	if cfg.ModelPath == "" {
		return fallback
	}

	model, err := newModelEmbedder(cfg)
	if err != nil {
		log.Printf("Warning: embedding model unavailable, using hash fallback: %v", err)
		return fallback
	}

	return &modelWithFallback{model: model, fallback: fallback}
}

// modelWithFallback redirects any model failure to the hash embedder so that
// a single bad encode never fails the caller.
type modelWithFallback struct {
	model    Embedder
	fallback *HashEmbedder
}

func (m *modelWithFallback) Embed(text string) ([]float32, error) {
	vec, err := m.model.Embed(text)
	if err != nil {
		log.Printf("Warning: model encoding failed, using hash fallback: %v", err)
		return m.fallback.Embed(text)
	}
	return vec, nil
}

func (m *modelWithFallback) Dimensions() int {
	return m.model.Dimensions()
}

// normalize converts a vector to unit length. A zero vector is returned
// unchanged.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}

	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}

	return normalized
}
