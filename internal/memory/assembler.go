// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package memory

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultTokenBudget caps how much estimated context the memory block may
// consume.
const DefaultTokenBudget = 900

// DefaultSystemPrompt is the fixed persona instruction rendered into every
// context block.
const DefaultSystemPrompt = "You are Alfred, an executive-function copilot. Use retrieved memory snippets when useful, " +
	"otherwise reason from the user's latest input. Keep replies concise but specific."

// noMemoriesMarker is rendered when no snippet survived ranking and
// capping. Downstream prompt evaluation matches on it byte-for-byte.
const noMemoriesMarker = "(none)"

// TokenEstimator estimates the token cost of a snippet text. Estimators
// must be deterministic and monotonic in text length; the exact tokenizer
// is deliberately pluggable.
type TokenEstimator func(text string) int

// EstimateTokens is the default estimator: roughly four runes per token,
// rounded up.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

// Assembler converts ranked snippets into a deduplicated, budget-capped
// context block with a fixed wire format.
type Assembler struct {
	systemPrompt string
	tokenBudget  int
	estimate     TokenEstimator
}

// NewAssembler creates an Assembler. Empty systemPrompt, zero tokenBudget,
// and nil estimator fall back to the defaults.
func NewAssembler(systemPrompt string, tokenBudget int, estimate TokenEstimator) *Assembler {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	if estimate == nil {
		estimate = EstimateTokens
	}
	return &Assembler{
		systemPrompt: systemPrompt,
		tokenBudget:  tokenBudget,
		estimate:     estimate,
	}
}

// RankAndCap sorts snippets by descending score (ties: more recent first),
// deduplicates by case-folded trimmed text keeping the highest-ranked
// occurrence, and greedily accepts snippets while the running token cost
// stays at or under the budget. It stops at the first snippet that would
// exceed the budget rather than reordering to pack it better.
func (a *Assembler) RankAndCap(snippets []Snippet) []Snippet {
	ranked := append([]Snippet(nil), snippets...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].TS > ranked[j].TS
	})

	seen := make(map[string]struct{}, len(ranked))
	used := 0
	var capped []Snippet
	for _, snip := range ranked {
		key := strings.ToLower(strings.TrimSpace(snip.Text))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		tokens := a.estimate(snip.Text)
		if used+tokens > a.tokenBudget {
			break
		}
		capped = append(capped, snip)
		used += tokens
	}
	return capped
}

// Render produces the context block handed to the completion backend. The
// section labels and ordering are a wire-level contract; change them and
// existing prompt evaluation breaks.
func (a *Assembler) Render(userText string, snippets []Snippet) string {
	var lines []string
	for _, snip := range snippets {
		lines = append(lines, fmt.Sprintf("- (score=%.2f) %s", snip.Score, snip.Text))
	}
	memoryBlock := noMemoriesMarker
	if len(lines) > 0 {
		memoryBlock = strings.Join(lines, "\n")
	}

	block := "SYSTEM:\n" + a.systemPrompt +
		"\n\nCONTEXT_MEMORY:\n" + memoryBlock +
		"\n\nUSER:\n" + strings.TrimSpace(userText)
	return strings.TrimSpace(block)
}
