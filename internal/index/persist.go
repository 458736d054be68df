// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Artifact layout, little-endian throughout:
//
//	magic   [8]byte "RECALLIX"
//	version uint32  (1 = vectors only, 2 = identity-mapped)
//	dim     uint32
//	count   uint64
//	ids     count x int64      (version >= 2 only)
//	vectors count x dim x float32
//
// The artifact is a cache of the record store, never the source of truth.
var artifactMagic = [8]byte{'R', 'E', 'C', 'A', 'L', 'L', 'I', 'X'}

const artifactVersion = 2

// Persist writes the current snapshot to the artifact path. Persisting an
// unbuilt index is a no-op. The write goes through a temp file and a
// rename so a crash never leaves a torn artifact behind.
func (f *Flat) Persist() error {
	f.mu.RLock()
	snap := f.snap
	f.mu.RUnlock()

	if snap == nil {
		return nil
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "creating temp artifact: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	if err := writeArtifact(w, f.dims, snap); err != nil {
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "writing artifact: %w", err)
	}
	if err := w.Flush(); err != nil {
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "flushing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "closing temp artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "renaming artifact into place: %w", err)
	}
	return nil
}

// Load restores the snapshot from the artifact path. A missing artifact
// leaves the index unbuilt without error; the caller rebuilds from the
// record store instead. A version-1 artifact carries no identity section
// and is rehydrated by re-adding its vectors under positional identities.
func (f *Flat) Load() error {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "opening artifact: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return recallerr.Errorf(recallerr.CodeIndexPersistFailure, "stating artifact: %w", err)
	}

	snap, dims, err := readArtifact(bufio.NewReader(file), info.Size())
	if err != nil {
		return err
	}
	if dims != f.dims {
		return recallerr.Errorf(recallerr.CodeIndexDimensionMismatch,
			"artifact dimension %d disagrees with index dimension %d", dims, f.dims)
	}

	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()
	return nil
}

func writeArtifact(w io.Writer, dims int, snap *snapshot) error {
	if _, err := w.Write(artifactMagic[:]); err != nil {
		return err
	}
	header := []any{uint32(artifactVersion), uint32(dims), uint64(len(snap.ids))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, snap.ids); err != nil {
		return err
	}
	for _, vec := range snap.vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return err
		}
	}
	return nil
}

// headerSize is the fixed artifact prefix: magic, version, dim, count.
const headerSize = 8 + 4 + 4 + 8

func readArtifact(r io.Reader, size int64) (*snapshot, int, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, 0, recallerr.Errorf(recallerr.CodeIndexArtifactCorrupt, "reading artifact magic: %w", err)
	}
	if !bytes.Equal(magic[:], artifactMagic[:]) {
		return nil, 0, recallerr.New(recallerr.CodeIndexArtifactCorrupt, "artifact magic mismatch")
	}

	var (
		version uint32
		dims    uint32
		count   uint64
	)
	for _, dst := range []any{&version, &dims, &count} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, 0, recallerr.Errorf(recallerr.CodeIndexArtifactCorrupt, "reading artifact header: %w", err)
		}
	}
	if version != 1 && version != artifactVersion {
		return nil, 0, recallerr.Errorf(recallerr.CodeIndexArtifactCorrupt, "unsupported artifact version %d", version)
	}
	if dims == 0 {
		return nil, 0, recallerr.New(recallerr.CodeIndexArtifactCorrupt, "artifact dimension is zero")
	}

	// The header alone sizes the allocations below, so it must agree
	// with the actual payload before anything is allocated.
	rowBytes := uint64(dims) * 4
	if version >= 2 {
		rowBytes += 8 // id per row
	}
	if size < headerSize {
		return nil, 0, recallerr.New(recallerr.CodeIndexArtifactCorrupt, "artifact shorter than header")
	}
	payload := uint64(size - headerSize)
	if count > payload/rowBytes || count*rowBytes != payload {
		return nil, 0, recallerr.Errorf(recallerr.CodeIndexArtifactCorrupt,
			"artifact length %d disagrees with header count %d", size, count)
	}

	snap := &snapshot{
		ids:     make([]int64, count),
		vectors: make([][]float32, count),
	}

	if version >= 2 {
		if err := binary.Read(r, binary.LittleEndian, snap.ids); err != nil {
			return nil, 0, recallerr.Errorf(recallerr.CodeIndexArtifactCorrupt, "reading artifact ids: %w", err)
		}
	} else {
		// Legacy artifact without identity metadata: rehydrate under
		// positional identities. Callers are expected to rebuild from
		// the record store to recover true identities.
		for i := range snap.ids {
			snap.ids[i] = int64(i)
		}
	}

	for i := range snap.vectors {
		vec := make([]float32, dims)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, 0, recallerr.Errorf(recallerr.CodeIndexArtifactCorrupt, "reading artifact vectors: %w", err)
		}
		snap.vectors[i] = vec
	}

	return snap, int(dims), nil
}
