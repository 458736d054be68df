// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

// Package provider defines the external model capabilities the memory
// core depends on: turning text into vectors and turning a rendered
// prompt into a completion. Both are constructor-injected; nothing in the
// core reads ambient client state.
package provider

import (
	"context"
	"math"
	"strings"

	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Embedder converts text into a fixed-dimension L2-normalized vector.
type Embedder interface {
	// Embed rejects empty or whitespace-only text rather than returning
	// a zero vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension is the fixed output vector length.
	Dimension() int
}

// Usage carries token counters reported by a completion backend.
type Usage struct {
	PromptTokens     int `json:"prompt"`
	CompletionTokens int `json:"completion"`
}

// Completion is the result of one completion call.
type Completion struct {
	Text  string
	Usage Usage
}

// CompleteOptions controls a single completion call.
type CompleteOptions struct {
	Temperature float64
}

// Completer generates text from a rendered context block.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (Completion, error)
}

// NormalizeText collapses runs of whitespace into single spaces and trims
// the ends, so equal note content embeds identically regardless of layout.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ValidateVector checks an embedder's output against the expected
// dimension and scales it to unit length. A zero-norm vector is a backend
// bug and is rejected rather than silently indexed.
func ValidateVector(vec []float32, dims int) ([]float32, error) {
	if len(vec) != dims {
		return nil, recallerr.New(recallerr.CodeEmbedDimensionMismatch,
			"embedding length disagrees with expected dimension",
			recallerr.Field("got", len(vec)),
			recallerr.FieldDimension(dims),
		)
	}

	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, recallerr.New(recallerr.CodeEmbedZeroVector, "zero-norm embedding encountered")
	}

	out := make([]float32, len(vec))
	for i, x := range vec {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}
