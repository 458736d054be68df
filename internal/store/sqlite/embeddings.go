// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/recall-dev/recall/internal/store"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Put inserts or replaces the embedding record for noteID. The write is
// committed before Put returns.
func (s *Store) Put(ctx context.Context, noteID int64, vector []float32, ts int64) error {
	if len(vector) != s.dims {
		return recallerr.New(recallerr.CodeStoreDimensionMismatch,
			"vector length disagrees with store dimension",
			recallerr.FieldNoteID(noteID),
			recallerr.Field("got", len(vector)),
			recallerr.FieldDimension(s.dims),
		)
	}

	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "serializing embedding for note %d: %w", noteID, err)
	}

	const q = `INSERT INTO note_embeddings(note_id, dim, vec, ts)
VALUES (?, ?, ?, ?)
ON CONFLICT(note_id) DO UPDATE SET dim = excluded.dim, vec = excluded.vec, ts = excluded.ts`

	if _, err := s.db.ExecContext(ctx, q, noteID, s.dims, blob, ts); err != nil {
		return recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "upserting embedding for note %d: %w", noteID, err)
	}
	return nil
}

// Embedding returns the stored vector for noteID.
func (s *Store) Embedding(ctx context.Context, noteID int64) ([]float32, error) {
	const q = `SELECT dim, vec FROM note_embeddings WHERE note_id = ?`

	var (
		dim  int
		blob []byte
	)
	err := s.db.QueryRowContext(ctx, q, noteID).Scan(&dim, &blob)
	if err == sql.ErrNoRows {
		return nil, recallerr.New(recallerr.CodeStoreNoteNotFound,
			"no embedding stored for note", recallerr.FieldNoteID(noteID))
	}
	if err != nil {
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "reading embedding for note %d: %w", noteID, err)
	}

	vec := deserializeFloat32(blob)
	if len(vec) != dim {
		return nil, recallerr.New(recallerr.CodeStoreDatabaseFailure,
			"embedding blob length disagrees with recorded dimension",
			recallerr.FieldNoteID(noteID), recallerr.FieldDimension(dim))
	}
	return vec, nil
}

// MissingEmbeddings returns up to limit notes that have nonempty text, are
// not soft-deleted, and have no embedding record, most recent first.
func (s *Store) MissingEmbeddings(ctx context.Context, limit int) ([]store.Note, error) {
	const q = `SELECT n.id, n.text, n.ts
FROM notes n
LEFT JOIN note_embeddings e ON e.note_id = n.id
WHERE e.note_id IS NULL AND LENGTH(n.text) > 0 AND n.is_deleted = 0
ORDER BY n.ts DESC
LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "querying notes missing embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanNotes(rows)
}

// LoadAll returns the full embedding snapshot ordered by descending
// timestamp. Rows whose blob length disagrees with the recorded dimension
// are skipped rather than failing the whole load.
func (s *Store) LoadAll(ctx context.Context) (store.Snapshot, error) {
	const q = `SELECT note_id, dim, vec FROM note_embeddings ORDER BY ts DESC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return store.Snapshot{}, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "loading embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap store.Snapshot
	for rows.Next() {
		var (
			id   int64
			dim  int
			blob []byte
		)
		if err := rows.Scan(&id, &dim, &blob); err != nil {
			return store.Snapshot{}, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "scanning embedding row: %w", err)
		}

		vec := deserializeFloat32(blob)
		if len(vec) != dim {
			s.logger.Warn("skipping embedding with inconsistent blob length",
				"note_id", id, "dim", dim, "floats", len(vec))
			continue
		}

		snap.IDs = append(snap.IDs, id)
		snap.Vectors = append(snap.Vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, recallerr.Errorf(recallerr.CodeStoreDatabaseFailure, "iterating embedding rows: %w", err)
	}

	return snap, nil
}

// deserializeFloat32 decodes the little-endian float32 blob layout written
// by sqlite_vec.SerializeFloat32.
func deserializeFloat32(blob []byte) []float32 {
	n := len(blob) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec
}
