// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package store

import "context"

// Note is a unit of free text owned by the external note store. The memory
// core reads notes and reacts to deletions; it never authors their content.
type Note struct {
	ID   int64
	Text string
	TS   int64 // seconds since epoch
}

// Snapshot is the full embedding corpus at a point in time, ordered by
// descending timestamp. IDs and Vectors are parallel slices.
type Snapshot struct {
	IDs     []int64
	Vectors [][]float32
}

// Empty reports whether the snapshot holds no embedding records.
func (s Snapshot) Empty() bool { return len(s.IDs) == 0 }

// NoteStore manages the notes table on behalf of the external client.
type NoteStore interface {
	// Add inserts a note and returns its identity.
	Add(ctx context.Context, text string, ts int64) (int64, error)

	// Delete soft-deletes a note. Its embedding record stops being
	// visible to retrieval and is removed on the next hard purge.
	Delete(ctx context.Context, id int64) error

	// Purge hard-deletes a note; the embedding record is cascade-deleted.
	Purge(ctx context.Context, id int64) error

	// FetchByIDs returns text and timestamp for the given identities,
	// excluding soft-deleted notes. Duplicate and unknown ids are
	// tolerated; unknown ids are simply absent from the result.
	FetchByIDs(ctx context.Context, ids []int64) ([]Note, error)

	// Recent returns up to limit non-deleted notes with nonempty text,
	// most recent first.
	Recent(ctx context.Context, limit int) ([]Note, error)
}

// EmbeddingStore is the durable mapping from note identity to its
// embedding vector.
type EmbeddingStore interface {
	// Put inserts or replaces the embedding record for noteID.
	Put(ctx context.Context, noteID int64, vector []float32, ts int64) error

	// Embedding returns the stored vector for noteID.
	Embedding(ctx context.Context, noteID int64) ([]float32, error)

	// MissingEmbeddings returns up to limit notes that have nonempty
	// text, are not soft-deleted, and have no embedding record, most
	// recent first.
	MissingEmbeddings(ctx context.Context, limit int) ([]Note, error)

	// LoadAll returns the full corpus snapshot ordered by descending
	// timestamp. An empty store yields an empty snapshot, not an error.
	LoadAll(ctx context.Context) (Snapshot, error)

	// Dimension is the fixed vector length this store accepts.
	Dimension() int
}

// MemoryStore combines note and embedding storage over one database.
type MemoryStore interface {
	NoteStore
	EmbeddingStore
	Close() error
}
