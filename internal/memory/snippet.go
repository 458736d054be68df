// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

// Package memory implements the retrieval pipeline: backfilling
// embeddings, rebuilding the similarity index, retrieving ranked
// candidates, and assembling them into a budget-capped context block.
package memory

// Snippet is an ephemeral ranked memory fragment, constructed per query
// and discarded after assembly.
type Snippet struct {
	NoteID int64   `json:"note_id"`
	Text   string  `json:"text"`
	Score  float32 `json:"score"`
	TS     int64   `json:"ts"`
}
