// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package index_test

import (
	"bufio"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/recall-dev/recall/internal/index"
	recallerr "github.com/recall-dev/recall/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlat_PersistLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	vectors := [][]float32{
		{1, 0, 0, 0},
		normalize([]float32{0.99, 0.14, 0, 0}),
		{0, 1, 0, 0},
	}
	ids := []int64{10, 11, 12}

	original := index.NewFlat(4, path)
	require.NoError(t, original.Build(vectors, ids))

	restored := index.NewFlat(4, path)
	require.NoError(t, restored.Load())
	require.True(t, restored.Built())
	require.Equal(t, original.Size(), restored.Size())

	// Identical search results across every option combination we use.
	exclude := int64(10)
	for _, opts := range []index.SearchOptions{
		{TopK: 3},
		{TopK: 2, ExcludeID: &exclude},
		{TopK: 3, MinScore: 0.5},
		{TopK: 1, ExcludeID: &exclude, MinScore: 0.9},
	} {
		assert.Equal(t,
			original.Search([]float32{1, 0, 0, 0}, opts),
			restored.Search([]float32{1, 0, 0, 0}, opts),
		)
	}
}

func TestFlat_LoadMissingArtifactStaysUnbuilt(t *testing.T) {
	idx := index.NewFlat(4, filepath.Join(t.TempDir(), "missing.bin"))
	require.NoError(t, idx.Load())
	assert.False(t, idx.Built())
}

func TestFlat_PersistUnbuiltIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	idx := index.NewFlat(4, path)
	require.NoError(t, idx.Persist())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFlat_LoadCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	require.NoError(t, os.WriteFile(path, []byte("not an artifact"), 0o600))

	idx := index.NewFlat(4, path)
	err := idx.Load()
	require.Error(t, err)
	assert.True(t, recallerr.IsStorageFailure(err))
}

// TestFlat_LoadRejectsOversizedHeaderCount covers a corrupt header whose
// count field dwarfs the actual payload: Load must reject it up front
// instead of allocating for billions of rows it can never read.
func TestFlat_LoadRejectsOversizedHeaderCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	file, err := os.Create(path)
	require.NoError(t, err)
	w := bufio.NewWriter(file)
	_, err = w.Write([]byte("RECALLIX"))
	require.NoError(t, err)
	require.NoError(t, binary.Write(w, binary.LittleEndian, uint32(2)))
	require.NoError(t, binary.Write(w, binary.LittleEndian, uint32(4)))
	require.NoError(t, binary.Write(w, binary.LittleEndian, uint64(1)<<40))
	require.NoError(t, w.Flush())
	require.NoError(t, file.Close())

	idx := index.NewFlat(4, path)
	err = idx.Load()
	require.Error(t, err)
	assert.True(t, recallerr.IsStorageFailure(err))
	assert.False(t, idx.Built())
}

func TestFlat_LoadRejectsTruncatedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	built := index.NewFlat(4, path)
	require.NoError(t, built.Build([][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}, []int64{1, 2}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-4], 0o600))

	idx := index.NewFlat(4, path)
	err = idx.Load()
	require.Error(t, err)
	assert.True(t, recallerr.IsStorageFailure(err))
}

func TestFlat_LoadArtifactDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	built := index.NewFlat(2, path)
	require.NoError(t, built.Build([][]float32{{1, 0}}, []int64{1}))

	idx := index.NewFlat(4, path)
	err := idx.Load()
	require.Error(t, err)
	assert.True(t, recallerr.IsDimensionMismatch(err))
}

// TestFlat_LoadLegacyArtifactRehydratesPositionalIDs covers artifacts
// written before the identity section existed: vectors come back under
// positional identities so the index is still searchable until the next
// rebuild from the record store.
func TestFlat_LoadLegacyArtifactRehydratesPositionalIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.bin")
	writeLegacyArtifact(t, path, 2, [][]float32{
		{1, 0},
		{0, 1},
	})

	idx := index.NewFlat(2, path)
	require.NoError(t, idx.Load())
	require.True(t, idx.Built())
	require.Equal(t, 2, idx.Size())

	results := idx.Search([]float32{0, 1}, index.SearchOptions{TopK: 1})
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].ID)
}

// writeLegacyArtifact emits a version-1 artifact: header plus raw vectors,
// no identity section.
func writeLegacyArtifact(t *testing.T, path string, dims int, vectors [][]float32) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()

	w := bufio.NewWriter(file)
	_, err = w.Write([]byte("RECALLIX"))
	require.NoError(t, err)
	require.NoError(t, binary.Write(w, binary.LittleEndian, uint32(1)))
	require.NoError(t, binary.Write(w, binary.LittleEndian, uint32(dims)))
	require.NoError(t, binary.Write(w, binary.LittleEndian, uint64(len(vectors))))
	for _, vec := range vectors {
		require.NoError(t, binary.Write(w, binary.LittleEndian, vec))
	}
	require.NoError(t, w.Flush())
}
