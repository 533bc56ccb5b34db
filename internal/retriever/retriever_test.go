package retriever

import (
	"hash/fnv"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/embedding"
	"github.com/contextweave/contextweave/internal/index"
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

// newTestRetriever wires an initialized store, chromem index, and retriever.
func newTestRetriever(t *testing.T, embedder embedding.Embedder) (*Retriever, *store.Store) {
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

	return New(embedder, s, idx), s
}

// TestFindSimilarEmptyStore verifies an empty result without error.
func TestFindSimilarEmptyStore(t *testing.T) {
	r, _ := newTestRetriever(t, embedding.NewHashEmbedder(32))

	entries, err := r.FindSimilar("anything", Options{Limit: 5})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries on empty store, got %d", len(entries))
	}
}

// TestFindSimilarRanking runs the category-filtered ranking scenario:
// three entries, two of type perf, and a caching query must rank the caching
// entry at or above the indexing entry.
func TestFindSimilarRanking(t *testing.T) {
	embedder := &bagEmbedder{dimensions: 256}
	r, s := newTestRetriever(t, embedder)

	mustAdd(t, s, "Python caching strategies", "perf")
	mustAdd(t, s, "Database indexing tips", "perf")
	mustAdd(t, s, "UI color themes", "design")

	entries, err := r.FindSimilar("how to cache data in Python", Options{
		ContextType:   "perf",
		Limit:         2,
		MinSimilarity: -1,
	})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected exactly 2 results, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.ContextType != "perf" {
			t.Errorf("Expected only perf entries, got %q", entry.ContextType)
		}
	}
	if entries[0].Text != "Python caching strategies" {
		t.Errorf("Expected caching entry ranked first, got %q", entries[0].Text)
	}
	if entries[0].SimilarityScore < entries[1].SimilarityScore {
		t.Error("Expected scores sorted descending")
	}
}

// TestFindSimilarCategoryFilter verifies strict category filtering.
func TestFindSimilarCategoryFilter(t *testing.T) {
	embedder := &bagEmbedder{dimensions: 256}
	r, s := newTestRetriever(t, embedder)

	mustAdd(t, s, "shared words here", "alpha")
	mustAdd(t, s, "shared words there", "beta")

	entries, err := r.FindSimilar("shared words", Options{
		ContextType:   "alpha",
		Limit:         10,
		MinSimilarity: -1,
	})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	for _, entry := range entries {
		if entry.ContextType != "alpha" {
			t.Errorf("Filter leaked entry of type %q", entry.ContextType)
		}
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 alpha entry, got %d", len(entries))
	}
}

// TestFindSimilarMinSimilarity verifies the floor drops weak matches.
func TestFindSimilarMinSimilarity(t *testing.T) {
	embedder := &bagEmbedder{dimensions: 256}
	r, s := newTestRetriever(t, embedder)

	mustAdd(t, s, "kubernetes pod scheduling", "ops")
	mustAdd(t, s, "completely unrelated gardening advice", "ops")

	entries, err := r.FindSimilar("kubernetes pod restarts", Options{
		Limit:         10,
		MinSimilarity: 0.3,
	})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	for _, entry := range entries {
		if entry.SimilarityScore < 0.3 {
			t.Errorf("Entry %q below floor: %g", entry.Text, entry.SimilarityScore)
		}
	}
	if len(entries) == 0 {
		t.Error("Expected the kubernetes entry to clear the floor")
	}
}

// TestFindSimilarStaleIndex verifies deleted entries are filtered out even
// though the index still returns them.
func TestFindSimilarStaleIndex(t *testing.T) {
	embedder := &bagEmbedder{dimensions: 256}
	r, s := newTestRetriever(t, embedder)

	mustAdd(t, s, "ephemeral fact", "scratch")
	mustAdd(t, s, "durable fact", "keep")

	// Type-scoped clear deletes rows but leaves the index stale.
	if err := s.Clear("scratch"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	entries, err := r.FindSimilar("fact", Options{Limit: 10, MinSimilarity: -1})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	for _, entry := range entries {
		if entry.Text == "ephemeral fact" {
			t.Error("Stale index entry leaked into results")
		}
	}
}

// TestFindSimilarZeroLimit verifies a non-positive limit yields nothing.
func TestFindSimilarZeroLimit(t *testing.T) {
	r, _ := newTestRetriever(t, embedding.NewHashEmbedder(32))

	entries, err := r.FindSimilar("anything", Options{Limit: 0})
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries for zero limit, got %d", len(entries))
	}
}

func mustAdd(t *testing.T, s *store.Store, text, contextType string) {
	t.Helper()
	if _, err := s.Add(text, contextType, store.AddOptions{}); err != nil {
		t.Fatalf("Add(%q) failed: %v", text, err)
	}
}
