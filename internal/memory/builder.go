// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/recall-dev/recall/internal/index"
	"github.com/recall-dev/recall/internal/provider"
	"github.com/recall-dev/recall/internal/store"
)

// defaultBatchSize bounds how many notes one sync batch embeds, so
// partial progress commits durably even if the process dies mid-corpus.
const defaultBatchSize = 16

// Builder reconciles the embedding store with the similarity index:
// backfilling missing embeddings and rebuilding the index snapshot.
type Builder struct {
	store    store.MemoryStore
	embedder provider.Embedder
	index    *index.Flat
	logger   *slog.Logger
}

// NewBuilder creates a Builder over the given store, embedder, and index.
func NewBuilder(ms store.MemoryStore, embedder provider.Embedder, idx *index.Flat) *Builder {
	return &Builder{
		store:    ms,
		embedder: embedder,
		index:    idx,
		logger:   slog.Default(),
	}
}

// Sync backfills embeddings for every note that lacks one, in batches of
// batchSize, until the store reports none missing. Each batch commits
// before the next begins, so an interrupted sync resumes where it left
// off; a second run over a fully synced corpus performs no embedding
// work. Returns the total number of notes embedded.
//
// Sync does not touch the index: call Rebuild afterwards to make the new
// embeddings searchable.
func (b *Builder) Sync(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		notes, err := b.store.MissingEmbeddings(ctx, batchSize)
		if err != nil {
			return total, err
		}
		if len(notes) == 0 {
			return total, nil
		}

		for _, note := range notes {
			vec, err := b.embedder.Embed(ctx, note.Text)
			if err != nil {
				return total, err
			}

			ts := note.TS
			if ts == 0 {
				ts = time.Now().Unix()
			}
			if err := b.store.Put(ctx, note.ID, vec, ts); err != nil {
				return total, err
			}
			total++
		}

		b.logger.Debug("embedded batch", "count", len(notes), "total", total)
	}
}

// Rebuild loads the full embedding snapshot from the store and builds a
// fresh index from it, replacing any prior state and persisting the
// artifact. This is the only path that makes newly backfilled embeddings
// searchable.
func (b *Builder) Rebuild(ctx context.Context) error {
	snap, err := b.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	if err := b.index.Build(snap.Vectors, snap.IDs); err != nil {
		return err
	}

	b.logger.Info("rebuilt similarity index", "vectors", len(snap.IDs))
	return nil
}

// EnsureReady makes the index searchable at process start: it loads the
// persisted artifact if one exists and rebuilds from the store otherwise.
// The artifact is a cache, so a failed load falls back to a rebuild.
func (b *Builder) EnsureReady(ctx context.Context) error {
	if err := b.index.Load(); err != nil {
		b.logger.Warn("index artifact unusable, rebuilding from store", "error", err)
	}
	if b.index.Built() {
		return nil
	}
	return b.Rebuild(ctx)
}
