// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package memory_test

import (
	"context"
	"hash/fnv"
	"math"
	"path/filepath"
	"testing"

	"github.com/recall-dev/recall/internal/index"
	"github.com/recall-dev/recall/internal/provider"
	"github.com/recall-dev/recall/internal/store/sqlite"
	recallerr "github.com/recall-dev/recall/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testDims = 4

// fakeEmbedder derives a deterministic unit vector from the text hash and
// counts how many embedding calls reach it.
type fakeEmbedder struct {
	calls int
}

var _ provider.Embedder = (*fakeEmbedder)(nil)

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	normalized := provider.NormalizeText(text)
	if normalized == "" {
		return nil, recallerr.New(recallerr.CodeEmbedEmptyInput, "empty text")
	}
	e.calls++

	h := fnv.New64a()
	_, _ = h.Write([]byte(normalized))
	seed := h.Sum64()

	vec := make([]float32, testDims)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(seed%1000)/1000 + 0.001
		norm += float64(vec[i]) * float64(vec[i])
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec, nil
}

func (e *fakeEmbedder) Dimension() int { return testDims }

// newTestStore opens a sqlite store over a temp database.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "memory.db"), testDims)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestIndex creates an unbuilt index persisting into a temp dir.
func newTestIndex(t *testing.T) *index.Flat {
	t.Helper()
	return index.NewFlat(testDims, filepath.Join(t.TempDir(), "index.bin"))
}

// mustAddNote inserts a note and fails the test on error.
func mustAddNote(t *testing.T, s *sqlite.Store, text string, ts int64) int64 {
	t.Helper()
	id, err := s.Add(context.Background(), text, ts)
	require.NoError(t, err)
	return id
}
