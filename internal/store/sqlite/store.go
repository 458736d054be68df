// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package sqlite

import (
	"database/sql"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/recall-dev/recall/internal/store"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Compile-time interface check.
var _ store.MemoryStore = (*Store)(nil)

// Store implements store.MemoryStore backed by a single SQLite database
// holding the notes table and the note_embeddings record store.
type Store struct {
	db     *sql.DB
	dims   int
	logger *slog.Logger
}

// Open opens (or creates) the SQLite database at dbPath and ensures the
// notes and note_embeddings schema, including the cascade-delete trigger.
func Open(dbPath string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, recallerr.Errorf(recallerr.CodeStoreInvalidInput, "embedding dimension must be positive, got %d", dimensions)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "migrating memory tables: %w", err)
	}

	return &Store{db: db, dims: dimensions, logger: slog.Default()}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY,
	text       TEXT NOT NULL DEFAULT '',
	ts         INTEGER NOT NULL DEFAULT 0,
	is_deleted INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS note_embeddings (
	note_id INTEGER PRIMARY KEY,
	dim     INTEGER NOT NULL,
	vec     BLOB NOT NULL,
	ts      INTEGER NOT NULL,
	FOREIGN KEY(note_id) REFERENCES notes(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notes_ts ON notes(ts DESC);
`
	if _, err := db.Exec(ddl); err != nil {
		return err
	}

	// Belt-and-braces cascade for clients that hard-delete notes with
	// foreign key enforcement disabled on their connection.
	const trigger = `
CREATE TRIGGER IF NOT EXISTS note_embeddings_cleanup
AFTER DELETE ON notes
FOR EACH ROW BEGIN
	DELETE FROM note_embeddings WHERE note_id = OLD.id;
END;
`
	_, err := db.Exec(trigger)
	return err
}

// Dimension is the fixed vector length this store accepts.
func (s *Store) Dimension() int { return s.dims }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
