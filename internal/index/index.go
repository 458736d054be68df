// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

// Package index provides an exact inner-product similarity index with an
// explicit identity map. Identities survive rebuilds and support exclusion
// by id; positional indices are never exposed because they drift as soon
// as any note is deleted.
package index

import (
	"sort"
	"sync"

	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Result is a single search hit.
type Result struct {
	ID    int64   `json:"id"`
	Score float32 `json:"score"`
}

// SearchOptions controls a single Search call.
type SearchOptions struct {
	TopK      int
	ExcludeID *int64
	MinScore  float32
}

// snapshot is an immutable built state. Searches hold a reference to one
// snapshot for their whole scan, so a concurrent rebuild never tears them.
type snapshot struct {
	ids     []int64
	vectors [][]float32
}

// Flat is an exact (linear-scan) inner-product index over a fixed-dimension
// vector space. Scores are probability-like only when the caller stores
// L2-normalized vectors; that is a caller contract, not an index guarantee.
type Flat struct {
	mu   sync.RWMutex
	dims int
	path string
	snap *snapshot // nil until Build or Load succeeds
}

// NewFlat creates an unbuilt index for the given dimension, persisting its
// artifact at path.
func NewFlat(dimensions int, path string) *Flat {
	return &Flat{dims: dimensions, path: path}
}

// Dimension is the fixed vector length this index was created for.
func (f *Flat) Dimension() int { return f.dims }

// Built reports whether the index holds a searchable snapshot.
func (f *Flat) Built() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap != nil
}

// Size is the number of indexed identities.
func (f *Flat) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.snap == nil {
		return 0
	}
	return len(f.snap.ids)
}

// Build constructs a fresh snapshot from a full vector/identity set,
// atomically replacing any prior state, then persists it. An empty input
// produces a valid, empty, searchable index.
func (f *Flat) Build(vectors [][]float32, ids []int64) error {
	if len(vectors) != len(ids) {
		return recallerr.Errorf(recallerr.CodeIndexShapeMismatch,
			"vector count %d disagrees with id count %d", len(vectors), len(ids))
	}
	for i, vec := range vectors {
		if len(vec) != f.dims {
			return recallerr.New(recallerr.CodeIndexDimensionMismatch,
				"vector length disagrees with index dimension",
				recallerr.FieldNoteID(ids[i]),
				recallerr.Field("got", len(vec)),
				recallerr.FieldDimension(f.dims),
			)
		}
	}

	snap := &snapshot{
		ids:     append([]int64(nil), ids...),
		vectors: make([][]float32, len(vectors)),
	}
	for i, vec := range vectors {
		snap.vectors[i] = append([]float32(nil), vec...)
	}

	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()

	return f.Persist()
}

// Search returns up to opts.TopK (id, score) pairs ordered by descending
// score, ties broken by ascending id. Results below opts.MinScore and the
// excluded id are dropped. An unbuilt or empty index yields an empty
// result, never an error.
func (f *Flat) Search(query []float32, opts SearchOptions) []Result {
	f.mu.RLock()
	snap := f.snap
	f.mu.RUnlock()

	if snap == nil || len(snap.ids) == 0 || opts.TopK <= 0 || len(query) != f.dims {
		return nil
	}

	scored := make([]Result, len(snap.ids))
	for i, vec := range snap.vectors {
		scored[i] = Result{ID: snap.ids[i], Score: dot(query, vec)}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	// One extra raw candidate makes room for the excluded id, which may
	// otherwise displace a valid result from the requested TopK.
	rawK := opts.TopK
	if opts.ExcludeID != nil {
		rawK++
	}
	if rawK > len(scored) {
		rawK = len(scored)
	}

	results := make([]Result, 0, opts.TopK)
	for _, r := range scored[:rawK] {
		if opts.ExcludeID != nil && r.ID == *opts.ExcludeID {
			continue
		}
		if r.Score < opts.MinScore {
			continue
		}
		results = append(results, r)
		if len(results) >= opts.TopK {
			break
		}
	}
	return results
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
