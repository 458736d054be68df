// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package memory

import (
	"context"

	"github.com/recall-dev/recall/internal/index"
	"github.com/recall-dev/recall/internal/store"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Retriever turns a query vector into ranked snippets. It is a thin seam
// over the similarity index so exclusion and threshold policy stay
// independent of storage format.
type Retriever struct {
	index *index.Flat
	notes store.NoteStore
}

// NewRetriever creates a Retriever over the given index and note store.
func NewRetriever(idx *index.Flat, notes store.NoteStore) *Retriever {
	return &Retriever{index: idx, notes: notes}
}

// Retrieve returns up to topK snippets ranked by descending similarity,
// enriched with note text and timestamp. Hits whose note has been
// soft-deleted since the last rebuild are dropped. An unbuilt or empty
// index yields an empty result, never an error.
func (r *Retriever) Retrieve(ctx context.Context, query []float32, topK int, minScore float32, excludeID *int64) ([]Snippet, error) {
	if len(query) != r.index.Dimension() {
		return nil, recallerr.New(recallerr.CodeRetrieveDimensionMismatch,
			"query vector length disagrees with index dimension",
			recallerr.Field("got", len(query)),
			recallerr.FieldDimension(r.index.Dimension()),
		)
	}

	hits := r.index.Search(query, index.SearchOptions{
		TopK:      topK,
		ExcludeID: excludeID,
		MinScore:  minScore,
	})
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}

	notes, err := r.notes.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]store.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}

	snippets := make([]Snippet, 0, len(hits))
	for _, h := range hits {
		note, ok := byID[h.ID]
		if !ok {
			continue // deleted since the last rebuild
		}
		snippets = append(snippets, Snippet{
			NoteID: note.ID,
			Text:   note.Text,
			Score:  h.Score,
			TS:     note.TS,
		})
	}
	return snippets, nil
}
