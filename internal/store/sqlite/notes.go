// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/recall-dev/recall/internal/store"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Add inserts a note and returns its identity.
func (s *Store) Add(ctx context.Context, text string, ts int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO notes(text, ts) VALUES (?, ?)`, text, ts)
	if err != nil {
		return 0, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "inserting note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "reading note id: %w", err)
	}
	return id, nil
}

// Delete soft-deletes a note so it stops appearing in retrieval and
// backfill queries.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET is_deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "soft-deleting note %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "reading rows affected: %w", err)
	}
	if n == 0 {
		return recallerr.New(recallerr.CodeStoreNoteNotFound, "note does not exist", recallerr.FieldNoteID(id))
	}
	return nil
}

// Purge hard-deletes a note. The note_embeddings record goes with it via
// the ON DELETE CASCADE foreign key and the cleanup trigger.
func (s *Store) Purge(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "purging note %d: %w", id, err)
	}
	return nil
}

// FetchByIDs returns text and timestamp for the given identities, excluding
// soft-deleted notes. Duplicate and unknown ids are tolerated.
func (s *Store) FetchByIDs(ctx context.Context, ids []int64) ([]store.Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	q := `SELECT DISTINCT id, text, ts FROM notes WHERE id IN (` + placeholders + `) AND is_deleted = 0`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "fetching notes by id: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// Recent returns up to limit non-deleted notes with nonempty text, most
// recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]store.Note, error) {
	const q = `SELECT id, text, ts FROM notes
WHERE is_deleted = 0 AND LENGTH(text) > 0
ORDER BY ts DESC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "fetching recent notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanNotes(rows)
}

func scanNotes(rows *sql.Rows) ([]store.Note, error) {
	var notes []store.Note
	for rows.Next() {
		var n store.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.TS); err != nil {
			return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "scanning note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "iterating note rows: %w", err)
	}
	return notes, nil
}
