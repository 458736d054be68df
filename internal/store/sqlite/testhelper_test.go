// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/recall-dev/recall/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

// testDir creates a temp directory for a test and registers cleanup.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "recall-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testStore opens a store over a temp database with the given dimension.
func testStore(t *testing.T, name string, dims int) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(testDir(t), name+".db"), dims)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// addNote inserts a note and fails the test on error.
func addNote(t *testing.T, s *sqlite.Store, text string, ts int64) int64 {
	t.Helper()
	id, err := s.Add(context.Background(), text, ts)
	require.NoError(t, err)
	return id
}
