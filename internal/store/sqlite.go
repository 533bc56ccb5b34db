/*
Package store implements the persistent embedding store.

Entries live in a single SQLite table keyed by a deterministic content id,
with vectors and metadata serialized as JSON. The store enforces a hard
capacity bound with oldest-first eviction and optionally mirrors vectors into
an accelerated similarity index. SQLite access goes through modernc.org/sqlite
(pure Go, CGo-free).

If the database cannot be opened the store is disabled and every operation
becomes a no-op: context enhancement degrades, the primary conversation flow
does not.
*/
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/contextweave/contextweave/internal/config"
	"github.com/contextweave/contextweave/internal/embedding"
	"github.com/contextweave/contextweave/internal/index"
)

// Store persists context entries and keeps the similarity index coherent.
//
// A single mutex guards all operations: exported methods acquire it, internal
// helpers assume it is held. Add may therefore trigger eviction internally
// without re-locking.
type Store struct {
	db         *sql.DB
	dbPath     string
	enabled    bool
	maxEntries int
	embedder   embedding.Embedder
	idx        index.Index
	mu         sync.Mutex
	initOnce   sync.Once
}

// NewStore creates a store over the configured database path. Call Init
// before use.
func NewStore(cfg *config.Config, embedder embedding.Embedder) *Store {
	return &Store{
		dbPath:     cfg.DBPath,
		enabled:    true,
		maxEntries: cfg.MaxEntries,
		embedder:   embedder,
	}
}

// SetIndex attaches an accelerated similarity index. Vectors added after this
// call are mirrored into it; a full Clear resets it. Without an index the
// store only persists, and searches fall back to a linear scan.
func (s *Store) SetIndex(idx index.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = idx
}

// Init opens the database and runs migrations.
//
// If initialization fails, the store is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *Store) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
	})

	return initErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// EntryID derives the deterministic id for an entry from its identity fields.
// The same (text, contextType, sessionID, userID) always maps to the same id,
// so re-adding identical content overwrites rather than duplicates.
func EntryID(text, contextType, sessionID, userID string) string {
	h := sha256.New()
	for _, part := range []string{text, contextType, sessionID, userID} {
		h.Write([]byte(part))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// runMigrations executes database schema migrations.
func (s *Store) runMigrations() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.currentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

func (s *Store) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *Store) currentMigrationVersion() (int, error) {
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *Store) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// migration001InitialSchema creates the context_entries table.
func (s *Store) migration001InitialSchema() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS context_entries (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			vector TEXT NOT NULL,
			context_type TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`); err != nil {
		return fmt.Errorf("failed to create context_entries table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_context_entries_type
		ON context_entries(context_type)
	`); err != nil {
		return fmt.Errorf("failed to create context_type index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_context_entries_created
		ON context_entries(created_at)
	`); err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}

	return nil
}

// vectorToJSON converts a float32 vector to JSON for storage.
func vectorToJSON(vector []float32) string {
	data, err := json.Marshal(vector)
	if err != nil {
		log.Printf("Warning: failed to marshal vector: %v", err)
		return "[]"
	}
	return string(data)
}

// jsonToVector parses JSON storage back to a float32 vector.
func jsonToVector(jsonStr string) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal([]byte(jsonStr), &vector); err != nil {
		return nil, err
	}
	return vector, nil
}

// metadataToJSON converts a metadata map to JSON for storage.
func metadataToJSON(metadata map[string]string) string {
	if len(metadata) == 0 {
		return "{}"
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("Warning: failed to marshal metadata: %v", err)
		return "{}"
	}
	return string(data)
}

// jsonToMetadata parses JSON storage back to a metadata map.
func jsonToMetadata(jsonStr string) map[string]string {
	if jsonStr == "" || jsonStr == "{}" {
		return nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(jsonStr), &metadata); err != nil {
		log.Printf("Warning: failed to parse metadata: %v", err)
		return nil
	}
	return metadata
}
