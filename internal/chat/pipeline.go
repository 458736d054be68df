// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

// Package chat composes the retrieval pipeline into a single
// memory-grounded question/answer call: embed the user text, retrieve
// related snippets, assemble the context block, and complete it.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/recall-dev/recall/internal/memory"
	"github.com/recall-dev/recall/internal/provider"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Default retrieval options for a chat turn.
const (
	DefaultTopK        = 8
	DefaultMinScore    = 0.28
	DefaultTemperature = 0.4
)

// Options tunes retrieval and completion for one request. Zero values
// mean "not set" and fall back to the defaults, matching clients that
// omit opts entirely. A negative MinScore disables the score threshold;
// an exact zero temperature is not representable on this wire shape and
// selects the default instead.
type Options struct {
	TopK        int     `json:"top_k"`
	MinScore    float32 `json:"min_score"`
	Temperature float64 `json:"temperature"`
}

// Request is one user turn.
type Request struct {
	SessionID string  `json:"session_id"`
	UserText  string  `json:"user_text"`
	Opts      Options `json:"opts"`
}

// MemoryRef identifies a snippet that grounded a response.
type MemoryRef struct {
	ID    int64   `json:"id"`
	Score float32 `json:"score"`
}

// Response is the assistant's reply plus retrieval accounting.
type Response struct {
	AssistantText string         `json:"assistant_text"`
	UsedMemory    []MemoryRef    `json:"used_memory"`
	LatencyMS     int64          `json:"latency_ms"`
	TokenUsage    provider.Usage `json:"token_usage"`
}

// Pipeline wires the embedder, retriever, assembler, and completer into
// one synchronous per-query flow. One instance serves a whole process;
// all dependencies are injected at construction.
type Pipeline struct {
	embedder  provider.Embedder
	retriever *memory.Retriever
	assembler *memory.Assembler
	completer provider.Completer
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline over the given collaborators.
func NewPipeline(embedder provider.Embedder, retriever *memory.Retriever, assembler *memory.Assembler, completer provider.Completer) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		retriever: retriever,
		assembler: assembler,
		completer: completer,
		logger:    slog.Default(),
	}
}

// Handle runs one chat turn. Empty user text is rejected. A retrieval
// that finds nothing still completes — the rendered block carries the
// explicit no-memories marker instead of snippets.
func (p *Pipeline) Handle(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.UserText) == "" {
		return Response{}, recallerr.New(recallerr.CodeCLIInputInvalid, "user_text required")
	}

	opts := req.Opts
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MinScore == 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}

	start := time.Now()

	query, err := p.embedder.Embed(ctx, req.UserText)
	if err != nil {
		return Response{}, err
	}

	snippets, err := p.retriever.Retrieve(ctx, query, opts.TopK, opts.MinScore, nil)
	if err != nil {
		return Response{}, err
	}

	refs := make([]MemoryRef, 0, len(snippets))
	for _, snip := range snippets {
		refs = append(refs, MemoryRef{ID: snip.NoteID, Score: snip.Score})
	}

	capped := p.assembler.RankAndCap(snippets)
	prompt := p.assembler.Render(req.UserText, capped)

	completion, err := p.completer.Complete(ctx, prompt, provider.CompleteOptions{
		Temperature: opts.Temperature,
	})
	if err != nil {
		return Response{}, err
	}

	latency := time.Since(start).Milliseconds()
	p.logger.Debug("chat turn complete",
		"session_id", req.SessionID,
		"memories", len(refs),
		"latency_ms", latency,
	)

	return Response{
		AssistantText: completion.Text,
		UsedMemory:    refs,
		LatencyMS:     latency,
		TokenUsage:    completion.Usage,
	}, nil
}
