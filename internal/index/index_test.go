package index

import (
	"testing"
)

// fakeSource is an in-memory VectorSource for linear index tests.
type fakeSource struct {
	records []VectorRecord
	err     error
}

func (f *fakeSource) ListVectors() ([]VectorRecord, error) {
	return f.records, f.err
}

// TestCosineSimilarity verifies basic score properties.
func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}
	d := []float32{-1, 0, 0}

	if got := cosineSimilarity(a, b); got < 0.999 {
		t.Errorf("Expected identical vectors to score ~1, got %g", got)
	}
	if got := cosineSimilarity(a, c); got != 0 {
		t.Errorf("Expected orthogonal vectors to score 0, got %g", got)
	}
	if got := cosineSimilarity(a, d); got > -0.999 {
		t.Errorf("Expected opposite vectors to score ~-1, got %g", got)
	}
	if got := cosineSimilarity(a, []float32{1, 2}); got != 0 {
		t.Errorf("Expected mismatched dimensions to score 0, got %g", got)
	}
}

// TestLinearIndexSearch verifies ordering and truncation.
func TestLinearIndexSearch(t *testing.T) {
	source := &fakeSource{records: []VectorRecord{
		{ID: "far", Vector: []float32{0, 1, 0}},
		{ID: "near", Vector: []float32{1, 0, 0}},
		{ID: "mid", Vector: []float32{0.7, 0.7, 0}},
	}}
	idx := NewLinearIndex(source)

	matches, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "near" {
		t.Errorf("Expected 'near' first, got %q", matches[0].ID)
	}
	if matches[1].ID != "mid" {
		t.Errorf("Expected 'mid' second, got %q", matches[1].ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("Expected scores sorted descending")
	}
}

// TestLinearIndexEmptySource verifies empty results without error.
func TestLinearIndexEmptySource(t *testing.T) {
	idx := NewLinearIndex(&fakeSource{})

	matches, err := idx.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
	if idx.Size() != 0 {
		t.Errorf("Expected size 0, got %d", idx.Size())
	}
}

// TestChromemIndexAddSearch verifies the accelerated strategy round-trip.
func TestChromemIndexAddSearch(t *testing.T) {
	idx, err := NewChromemIndex()
	if err != nil {
		t.Fatalf("NewChromemIndex failed: %v", err)
	}

	vectors := map[string][]float32{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
		"c": {0.9, 0.1, 0},
	}
	for id, vec := range vectors {
		if err := idx.Add(id, vec); err != nil {
			t.Fatalf("Add(%q) failed: %v", id, err)
		}
	}

	if idx.Size() != 3 {
		t.Errorf("Expected size 3, got %d", idx.Size())
	}

	matches, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "a" {
		t.Errorf("Expected 'a' first, got %q", matches[0].ID)
	}
}

// TestChromemIndexOverfetchClamped verifies topK above collection size works.
func TestChromemIndexOverfetchClamped(t *testing.T) {
	idx, err := NewChromemIndex()
	if err != nil {
		t.Fatalf("NewChromemIndex failed: %v", err)
	}

	if err := idx.Add("only", []float32{1, 0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	matches, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Expected 1 match, got %d", len(matches))
	}
}

// TestChromemIndexReset verifies Reset empties the index.
func TestChromemIndexReset(t *testing.T) {
	idx, err := NewChromemIndex()
	if err != nil {
		t.Fatalf("NewChromemIndex failed: %v", err)
	}

	if err := idx.Add("x", []float32{1, 0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := idx.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if idx.Size() != 0 {
		t.Errorf("Expected size 0 after reset, got %d", idx.Size())
	}

	matches, err := idx.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search after reset failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches after reset, got %d", len(matches))
	}
}
