package index

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "entries"

// ChromemIndex is the accelerated strategy: an in-memory chromem-go
// collection holding every vector added since process start (or since the
// last Reset). Vectors are appended on add and never removed; staleness is
// tolerated and resolved by the caller.
//
// ChromemIndex is not independently locked for use alongside the store; the
// store mutates it while holding its own lock. The internal mutex only
// protects collection replacement during Reset.
type ChromemIndex struct {
	db  *chromem.DB
	col *chromem.Collection
	mu  sync.RWMutex
}

// NewChromemIndex creates an empty in-memory index.
func NewChromemIndex() (*ChromemIndex, error) {
	db := chromem.NewDB()

	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemIndex{db: db, col: col}, nil
}

// Add mirrors a vector under the given id, replacing any previous vector.
func (c *ChromemIndex) Add(id string, vector []float32) error {
	c.mu.RLock()
	col := c.col
	c.mu.RUnlock()

	doc := chromem.Document{
		ID:        id,
		Embedding: vector,
	}

	if err := col.AddDocument(context.Background(), doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Search returns up to topK matches sorted by similarity descending.
func (c *ChromemIndex) Search(query []float32, topK int) ([]Match, error) {
	c.mu.RLock()
	col := c.col
	c.mu.RUnlock()

	// chromem rejects result counts above the collection size.
	count := col.Count()
	if topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(context.Background(), query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		matches = append(matches, Match{
			ID:    result.ID,
			Score: float64(result.Similarity),
		})
	}

	return matches, nil
}

// Reset drops all indexed vectors by recreating the collection.
func (c *ChromemIndex) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	col, err := c.db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}

	c.col = col
	return nil
}

// Size returns the number of indexed vectors.
func (c *ChromemIndex) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.col.Count()
}
