/*
Package store provides data models for persisted context entries.
*/
package store

import "time"

// Entry is a stored text fragment with its embedding and correlation keys.
type Entry struct {
	// ID is derived deterministically from (text, context type, session id,
	// user id); re-adding identical content overwrites instead of duplicating.
	ID string `json:"id"`

	// Text is the original fragment, stored verbatim.
	Text string `json:"text"`

	// Vector is the embedding. Its dimension is fixed at store construction.
	Vector []float32 `json:"vector"`

	// ContextType is an open category label used only for filtering.
	ContextType string `json:"context_type"`

	// SessionID is an optional correlation key.
	SessionID string `json:"session_id,omitempty"`

	// UserID is an optional correlation key.
	UserID string `json:"user_id,omitempty"`

	// CreatedAt orders entries for eviction.
	CreatedAt time.Time `json:"created_at"`

	// Metadata is an open key/value map, opaque to the store.
	Metadata map[string]string `json:"metadata,omitempty"`

	// SimilarityScore is transient: populated only on entries returned from
	// a similarity query, never persisted.
	SimilarityScore float64 `json:"similarity_score,omitempty"`
}

// AddOptions carries the optional fields of an Add call.
type AddOptions struct {
	SessionID string
	UserID    string
	Metadata  map[string]string
}

// Stats summarizes store contents.
type Stats struct {
	// Total is the number of stored entries.
	Total int `json:"total"`

	// PerType counts entries by context type.
	PerType map[string]int `json:"per_type"`

	// Oldest and Newest bound the stored creation timestamps; zero when the
	// store is empty.
	Oldest time.Time `json:"oldest,omitempty"`
	Newest time.Time `json:"newest,omitempty"`

	// IndexSize is the number of vectors in the similarity index, which may
	// exceed Total when deletions have not been propagated.
	IndexSize int `json:"index_size"`
}
