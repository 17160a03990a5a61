// Package sqlite persists source metadata and the chat transcript so a
// notebook can be reopened where it was left. Vectors are deliberately
// never persisted; the index is rebuilt from stored source content at
// startup.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// schema holds both tables. messages.seq orders the transcript because
// the append sequence, not the wall clock, defines message order.
const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	kind     TEXT NOT NULL,
	ref      TEXT NOT NULL,
	content  TEXT NOT NULL,
	status   TEXT NOT NULL,
	excluded INTEGER NOT NULL DEFAULT 0,
	indexed  INTEGER NOT NULL DEFAULT 0,
	summary  TEXT NOT NULL DEFAULT 'null',
	added_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL,
	text          TEXT NOT NULL,
	cited_sources TEXT NOT NULL DEFAULT 'null',
	created_at    TEXT NOT NULL
);`

// Store is a unified SQLite-backed storage that provides the source and
// transcript store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the notebook database under dataDir.
// If dataDir is empty, defaults to ~/.notebook/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".notebook", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "notebook.db")

	// WAL mode so a read never blocks behind a streaming update.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// TranscriptStore returns a TranscriptStore interface backed by this
// store. Closing it closes the shared connection.
func (s *Store) TranscriptStore() driven.TranscriptStore {
	return &transcriptStore{store: s}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
