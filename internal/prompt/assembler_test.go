package prompt

import (
	"hash/fnv"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/embedding"
	"github.com/contextweave/contextweave/internal/index"
	"github.com/contextweave/contextweave/internal/retriever"
	"github.com/contextweave/contextweave/internal/store"
)

// bagEmbedder is a bag-of-words test embedder: shared tokens produce high
// cosine similarity, which hash embeddings cannot provide.
type bagEmbedder struct {
	dimensions int
}

func (b *bagEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, b.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'")
		buckets := []string{token}
		if len(token) > 4 {
			buckets = append(buckets, token[:4])
		}
		for _, bucket := range buckets {
			h := fnv.New32a()
			h.Write([]byte(bucket))
			vec[int(h.Sum32())%b.dimensions]++
		}
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = float32(math.Sqrt(float64(norm)))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (b *bagEmbedder) Dimensions() int { return b.dimensions }

// newTestAssembler wires a store, index, retriever, and assembler.
func newTestAssembler(t *testing.T, embedder embedding.Embedder) (*Assembler, *store.Store) {
	t.Helper()

	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.Dimensions = embedder.Dimensions()

	s := store.NewStore(cfg, embedder)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	idx, err := index.NewChromemIndex()
	if err != nil {
		t.Fatalf("NewChromemIndex failed: %v", err)
	}
	s.SetIndex(idx)

	return New(retriever.New(embedder, s, idx), 3), s
}

// TestEnhanceEmptyStore verifies passthrough when nothing is stored.
func TestEnhanceEmptyStore(t *testing.T) {
	a, _ := newTestAssembler(t, embedding.NewHashEmbedder(32))

	base := "You are a helpful assistant."
	result := a.Enhance(base, "tell me about caching", "", 0.7)

	if result.Status != StatusNoContext {
		t.Errorf("Expected StatusNoContext, got %q", result.Status)
	}
	if result.Prompt != base {
		t.Errorf("Expected base prompt unchanged, got %q", result.Prompt)
	}
	if result.Matches != 0 {
		t.Errorf("Expected 0 matches, got %d", result.Matches)
	}
}

// TestEnhanceAppendsContext verifies the happy path: retrieved context is
// appended to a marker-free prompt inside the delimited section.
func TestEnhanceAppendsContext(t *testing.T) {
	embedder := &bagEmbedder{dimensions: 256}
	a, s := newTestAssembler(t, embedder)

	if _, err := s.Add("Redis caching reduces database load", "perf", store.AddOptions{
		Metadata: map[string]string{"source": "wiki"},
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	base := "You are a helpful assistant."
	result := a.Enhance(base, "how does Redis caching work", "perf", -1)

	if result.Status != StatusEnhanced {
		t.Fatalf("Expected StatusEnhanced, got %q", result.Status)
	}
	if result.Matches != 1 {
		t.Errorf("Expected 1 match, got %d", result.Matches)
	}
	if !strings.HasPrefix(result.Prompt, base) {
		t.Error("Expected base prompt preserved at the start")
	}
	if !strings.Contains(result.Prompt, sectionHeader) || !strings.Contains(result.Prompt, sectionFooter) {
		t.Error("Expected delimited context section")
	}
	if !strings.Contains(result.Prompt, "Redis caching reduces database load") {
		t.Error("Expected retrieved text in the prompt")
	}
	if !strings.Contains(result.Prompt, "source=wiki") {
		t.Error("Expected flattened metadata in the prompt")
	}
}

// TestEnhanceSplicesBeforeMarker verifies anchor-based insertion.
func TestEnhanceSplicesBeforeMarker(t *testing.T) {
	embedder := &bagEmbedder{dimensions: 256}
	a, s := newTestAssembler(t, embedder)

	if _, err := s.Add("Use prepared statements for queries", "perf", store.AddOptions{}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	base := "You are a helpful assistant.\n\n## Instructions\nBe concise."
	result := a.Enhance(base, "prepared statements for queries", "perf", -1)

	if result.Status != StatusEnhanced {
		t.Fatalf("Expected StatusEnhanced, got %q", result.Status)
	}

	sectionIdx := strings.Index(result.Prompt, sectionHeader)
	markerIdx := strings.Index(result.Prompt, "## Instructions")
	if sectionIdx < 0 || markerIdx < 0 {
		t.Fatalf("Missing section or marker in %q", result.Prompt)
	}
	if sectionIdx > markerIdx {
		t.Error("Expected context section before the instructions marker")
	}
	if !strings.Contains(result.Prompt, "Be concise.") {
		t.Error("Expected instructions preserved")
	}
}

// TestEnhanceThresholdFiltersAll verifies passthrough when the similarity
// floor eliminates every candidate.
func TestEnhanceThresholdFiltersAll(t *testing.T) {
	embedder := &bagEmbedder{dimensions: 256}
	a, s := newTestAssembler(t, embedder)

	if _, err := s.Add("gardening advice for beginners", "hobby", store.AddOptions{}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	base := "You are a helpful assistant."
	result := a.Enhance(base, "kernel scheduler internals", "hobby", 0.9)

	if result.Status != StatusNoContext {
		t.Errorf("Expected StatusNoContext, got %q", result.Status)
	}
	if result.Prompt != base {
		t.Errorf("Expected base prompt unchanged, got %q", result.Prompt)
	}
}

// TestFlattenMetadata verifies deterministic key ordering.
func TestFlattenMetadata(t *testing.T) {
	got := flattenMetadata(map[string]string{"b": "2", "a": "1", "c": "3"})
	if got != "a=1 b=2 c=3" {
		t.Errorf("Expected sorted pairs, got %q", got)
	}
	if flattenMetadata(nil) != "" {
		t.Error("Expected empty string for nil metadata")
	}
}
