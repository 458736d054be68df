// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package memory_test

import (
	"strings"
	"testing"

	"github.com/recall-dev/recall/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultAssembler() *memory.Assembler {
	return memory.NewAssembler("", 0, nil)
}

func TestRankAndCap_SortsByScoreThenRecency(t *testing.T) {
	a := defaultAssembler()

	capped := a.RankAndCap([]memory.Snippet{
		{NoteID: 1, Text: "low score", Score: 0.3, TS: 100},
		{NoteID: 2, Text: "high score", Score: 0.9, TS: 100},
		{NoteID: 3, Text: "tied but older", Score: 0.5, TS: 100},
		{NoteID: 4, Text: "tied but newer", Score: 0.5, TS: 200},
	})

	require.Len(t, capped, 4)
	assert.Equal(t, int64(2), capped[0].NoteID)
	assert.Equal(t, int64(4), capped[1].NoteID)
	assert.Equal(t, int64(3), capped[2].NoteID)
	assert.Equal(t, int64(1), capped[3].NoteID)
}

func TestRankAndCap_DeduplicatesByFoldedTrimmedText(t *testing.T) {
	a := defaultAssembler()

	capped := a.RankAndCap([]memory.Snippet{
		{NoteID: 1, Text: "Buy oat milk", Score: 0.9, TS: 100},
		{NoteID: 2, Text: "  buy oat milk  ", Score: 0.8, TS: 200},
		{NoteID: 3, Text: "BUY OAT MILK", Score: 0.7, TS: 300},
		{NoteID: 4, Text: "something else", Score: 0.6, TS: 100},
	})

	require.Len(t, capped, 2)
	// The highest-ranked occurrence of the duplicate survives.
	assert.Equal(t, int64(1), capped[0].NoteID)
	assert.Equal(t, int64(4), capped[1].NoteID)

	seen := map[string]bool{}
	for _, snip := range capped {
		key := strings.ToLower(strings.TrimSpace(snip.Text))
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestRankAndCap_SkipsBlankSnippets(t *testing.T) {
	a := defaultAssembler()

	capped := a.RankAndCap([]memory.Snippet{
		{NoteID: 1, Text: "   ", Score: 0.9, TS: 100},
		{NoteID: 2, Text: "real content", Score: 0.5, TS: 100},
	})

	require.Len(t, capped, 1)
	assert.Equal(t, int64(2), capped[0].NoteID)
}

func TestRankAndCap_GreedyBudgetCap(t *testing.T) {
	// Five snippets of increasing length and decreasing score with a
	// budget of 30: a strict prefix is accepted and the first rejected
	// snippet would have pushed the running cost past the budget.
	a := memory.NewAssembler("", 30, nil)

	snippets := []memory.Snippet{
		{NoteID: 1, Text: strings.Repeat("a", 20), Score: 0.9, TS: 100},  // 5 tokens
		{NoteID: 2, Text: strings.Repeat("b", 40), Score: 0.8, TS: 100},  // 10 tokens
		{NoteID: 3, Text: strings.Repeat("c", 60), Score: 0.7, TS: 100},  // 15 tokens
		{NoteID: 4, Text: strings.Repeat("d", 80), Score: 0.6, TS: 100},  // 20 tokens
		{NoteID: 5, Text: strings.Repeat("e", 100), Score: 0.5, TS: 100}, // 25 tokens
	}

	capped := a.RankAndCap(snippets)
	require.Len(t, capped, 3)

	used := 0
	for _, snip := range capped {
		used += memory.EstimateTokens(snip.Text)
	}
	assert.LessOrEqual(t, used, 30)
	// Appending the next-ranked rejected snippet would exceed the budget.
	assert.Greater(t, used+memory.EstimateTokens(snippets[3].Text), 30)
}

func TestRankAndCap_StopsAtFirstOverflowWithoutRepacking(t *testing.T) {
	a := memory.NewAssembler("", 10, nil)

	capped := a.RankAndCap([]memory.Snippet{
		{NoteID: 1, Text: strings.Repeat("a", 20), Score: 0.9, TS: 100}, // 5 tokens
		{NoteID: 2, Text: strings.Repeat("b", 40), Score: 0.8, TS: 100}, // 10 tokens, would overflow
		{NoteID: 3, Text: strings.Repeat("c", 12), Score: 0.7, TS: 100}, // 3 tokens, would fit
	})

	// No reordering to better-pack the budget: the scan stops at the
	// first overflowing snippet even though a later one would fit.
	require.Len(t, capped, 1)
	assert.Equal(t, int64(1), capped[0].NoteID)
}

func TestRankAndCap_CustomEstimator(t *testing.T) {
	wordCount := func(text string) int { return len(strings.Fields(text)) }
	a := memory.NewAssembler("", 3, wordCount)

	capped := a.RankAndCap([]memory.Snippet{
		{NoteID: 1, Text: "two words", Score: 0.9, TS: 100},
		{NoteID: 2, Text: "three more words", Score: 0.8, TS: 100},
	})

	require.Len(t, capped, 1)
	assert.Equal(t, int64(1), capped[0].NoteID)
}

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, memory.EstimateTokens(""))
	assert.Equal(t, 1, memory.EstimateTokens("abc"))
	assert.Equal(t, 1, memory.EstimateTokens("abcd"))
	assert.Equal(t, 2, memory.EstimateTokens("abcde"))

	// Deterministic and monotonic under extension.
	assert.Equal(t, memory.EstimateTokens("same text"), memory.EstimateTokens("same text"))
	assert.GreaterOrEqual(t, memory.EstimateTokens("same text plus"), memory.EstimateTokens("same text"))
}

func TestRender_WireFormat(t *testing.T) {
	a := memory.NewAssembler("You are a test persona.", 0, nil)

	got := a.Render("  what did I plan?  ", []memory.Snippet{
		{NoteID: 1, Text: "dentist on friday", Score: 0.91, TS: 100},
		{NoteID: 2, Text: "buy oat milk", Score: 0.5, TS: 100},
	})

	want := "SYSTEM:\n" +
		"You are a test persona.\n" +
		"\n" +
		"CONTEXT_MEMORY:\n" +
		"- (score=0.91) dentist on friday\n" +
		"- (score=0.50) buy oat milk\n" +
		"\n" +
		"USER:\n" +
		"what did I plan?"
	assert.Equal(t, want, got)
}

func TestRender_NoMemoriesMarker(t *testing.T) {
	a := memory.NewAssembler("Persona.", 0, nil)

	got := a.Render("hello", nil)

	want := "SYSTEM:\n" +
		"Persona.\n" +
		"\n" +
		"CONTEXT_MEMORY:\n" +
		"(none)\n" +
		"\n" +
		"USER:\n" +
		"hello"
	assert.Equal(t, want, got)
}

func TestRender_DefaultSystemPrompt(t *testing.T) {
	a := defaultAssembler()
	got := a.Render("hi", nil)
	assert.True(t, strings.HasPrefix(got, "SYSTEM:\n"+memory.DefaultSystemPrompt))
}
