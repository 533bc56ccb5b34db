package store

import (
	"fmt"
	"log"
	"time"

	"github.com/contextweave/contextweave/internal/index"
)

// timeLayout is fixed-width: the fractional second is always nine digits, so
// stored strings sort lexicographically in time order. The eviction query and
// the MIN/MAX aggregates rely on that; RFC3339Nano would trim trailing zeros
// and break the ordering ("...00.5Z" sorts after "...00.52Z").
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Add embeds text, persists the entry (insert-or-replace keyed by the
// deterministic id), mirrors the vector into the similarity index when one is
// attached, and evicts the oldest entries if the capacity bound is exceeded.
// Returns the entry id.
func (s *Store) Add(text, contextType string, opts AddOptions) (string, error) {
	id := EntryID(text, contextType, opts.SessionID, opts.UserID)

	if !s.enabled || s.db == nil {
		return id, nil
	}

	vector, err := s.embedder.Embed(text)
	if err != nil {
		return "", fmt.Errorf("embed text: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO context_entries
			(id, text, vector, context_type, session_id, user_id, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		id,
		text,
		vectorToJSON(vector),
		contextType,
		opts.SessionID,
		opts.UserID,
		time.Now().UTC().Format(timeLayout),
		metadataToJSON(opts.Metadata),
	)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}

	if s.idx != nil {
		if err := s.idx.Add(id, vector); err != nil {
			log.Printf("Warning: failed to mirror entry into index: %v", err)
		}
	}

	if err := s.evictLocked(); err != nil {
		log.Printf("Warning: eviction failed: %v", err)
	}

	return id, nil
}

// Get retrieves a single entry by id. Returns nil when the id does not exist
// or the store is disabled.
func (s *Store) Get(id string) (*Entry, error) {
	if !s.enabled || s.db == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, text, vector, context_type, session_id, user_id, created_at, metadata
		FROM context_entries
		WHERE id = ?
	`

	rows, err := s.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("query entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	entry, err := scanEntry(rows)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Clear deletes all entries, or all entries of one context type. Clearing
// everything also resets the similarity index; a type-scoped clear leaves the
// index stale on purpose (stale ids are filtered out at retrieval time).
func (s *Store) Clear(contextType string) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if contextType == "" {
		if _, err := s.db.Exec("DELETE FROM context_entries"); err != nil {
			return fmt.Errorf("clear entries: %w", err)
		}
		if s.idx != nil {
			if err := s.idx.Reset(); err != nil {
				log.Printf("Warning: failed to reset index: %v", err)
			}
		}
		return nil
	}

	if _, err := s.db.Exec("DELETE FROM context_entries WHERE context_type = ?", contextType); err != nil {
		return fmt.Errorf("clear entries of type %q: %w", contextType, err)
	}
	return nil
}

// Stats reports entry counts, per-type counts, timestamp bounds, and the
// similarity index size.
func (s *Store) Stats() (Stats, error) {
	stats := Stats{PerType: make(map[string]int)}

	if !s.enabled || s.db == nil {
		return stats, nil
	}

	if err := s.collectStats(&stats); err != nil {
		return stats, err
	}

	// Queried outside the store lock: a linear index answers Size by reading
	// back through ListVectors.
	if s.idx != nil {
		stats.IndexSize = s.idx.Size()
	}

	return stats, nil
}

// collectStats fills the database-derived fields.
func (s *Store) collectStats(stats *Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(MIN(created_at), ''), COALESCE(MAX(created_at), '')
		FROM context_entries
	`)

	var oldest, newest string
	if err := row.Scan(&stats.Total, &oldest, &newest); err != nil {
		return fmt.Errorf("aggregate stats: %w", err)
	}

	if oldest != "" {
		if t, err := time.Parse(timeLayout, oldest); err == nil {
			stats.Oldest = t
		}
	}
	if newest != "" {
		if t, err := time.Parse(timeLayout, newest); err == nil {
			stats.Newest = t
		}
	}

	rows, err := s.db.Query(`
		SELECT context_type, COUNT(*)
		FROM context_entries
		GROUP BY context_type
	`)
	if err != nil {
		return fmt.Errorf("per-type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contextType string
		var count int
		if err := rows.Scan(&contextType, &count); err != nil {
			log.Printf("Warning: failed to scan per-type count: %v", err)
			continue
		}
		stats.PerType[contextType] = count
	}

	return nil
}

// List returns entries newest first, optionally filtered by context type.
// A non-positive limit returns everything.
func (s *Store) List(contextType string, limit int) ([]Entry, error) {
	if !s.enabled || s.db == nil {
		return []Entry{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, text, vector, context_type, session_id, user_id, created_at, metadata
		FROM context_entries
	`
	args := []any{}
	if contextType != "" {
		query += " WHERE context_type = ?"
		args = append(args, contextType)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			log.Printf("Warning: failed to scan entry: %v", err)
			continue
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// ListVectors returns every stored (id, vector) pair. It backs the linear
// fallback index.
func (s *Store) ListVectors() ([]index.VectorRecord, error) {
	if !s.enabled || s.db == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id, vector FROM context_entries")
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}
	defer rows.Close()

	var records []index.VectorRecord
	for rows.Next() {
		var id, vectorJSON string
		if err := rows.Scan(&id, &vectorJSON); err != nil {
			log.Printf("Warning: failed to scan vector row: %v", err)
			continue
		}
		vector, err := jsonToVector(vectorJSON)
		if err != nil {
			log.Printf("Warning: failed to parse stored vector: %v", err)
			continue
		}
		records = append(records, index.VectorRecord{ID: id, Vector: vector})
	}

	return records, nil
}

// evictLocked deletes the oldest entries in one pass when the count exceeds
// the capacity bound. The similarity index is not informed; stale ids are
// filtered out at retrieval time. Caller must hold the store mutex.
func (s *Store) evictLocked() error {
	row := s.db.QueryRow("SELECT COUNT(*) FROM context_entries")

	var count int
	if err := row.Scan(&count); err != nil {
		return err
	}

	overflow := count - s.maxEntries
	if overflow <= 0 {
		return nil
	}

	_, err := s.db.Exec(`
		DELETE FROM context_entries WHERE id IN (
			SELECT id FROM context_entries
			ORDER BY created_at ASC, rowid ASC
			LIMIT ?
		)
	`, overflow)
	return err
}

// rowScanner matches *sql.Rows for entry scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one entry row.
func scanEntry(rows rowScanner) (*Entry, error) {
	var entry Entry
	var vectorJSON, createdAt, metadataJSON string

	if err := rows.Scan(
		&entry.ID,
		&entry.Text,
		&vectorJSON,
		&entry.ContextType,
		&entry.SessionID,
		&entry.UserID,
		&createdAt,
		&metadataJSON,
	); err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	vector, err := jsonToVector(vectorJSON)
	if err != nil {
		return nil, fmt.Errorf("parse stored vector: %w", err)
	}
	entry.Vector = vector

	entry.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	entry.Metadata = jsonToMetadata(metadataJSON)
	return &entry, nil
}
