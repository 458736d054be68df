// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package provider_test

import (
	"context"
	"math"
	"testing"

	"github.com/recall-dev/recall/internal/provider"
	recallerr "github.com/recall-dev/recall/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "buy oat milk", provider.NormalizeText("  buy\n\toat   milk  "))
	assert.Equal(t, "", provider.NormalizeText("   \n\t "))
	assert.Equal(t, "unchanged", provider.NormalizeText("unchanged"))
}

func TestValidateVectorNormalizesToUnitLength(t *testing.T) {
	vec, err := provider.ValidateVector([]float32{3, 4}, 2)
	require.NoError(t, err)

	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestValidateVectorRejectsWrongDimension(t *testing.T) {
	_, err := provider.ValidateVector([]float32{1, 0, 0}, 2)
	require.Error(t, err)
	assert.True(t, recallerr.IsDimensionMismatch(err))
}

func TestValidateVectorRejectsZeroNorm(t *testing.T) {
	_, err := provider.ValidateVector([]float32{0, 0}, 2)
	require.Error(t, err)
	assert.Equal(t, recallerr.CodeEmbedZeroVector, recallerr.CodeOf(err))
}

// countingEmbedder records how many real embedding calls reach it.
type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if provider.NormalizeText(text) == "" {
		return nil, recallerr.New(recallerr.CodeEmbedEmptyInput, "empty text")
	}
	e.calls++
	return []float32{1, 0}, nil
}

func (e *countingEmbedder) Dimension() int { return 2 }

func TestCachingEmbedderSkipsRepeatInference(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{}
	cached, err := provider.NewCachingEmbedder(inner, 1<<20)
	require.NoError(t, err)
	defer cached.Close()

	vec, err := cached.Embed(ctx, "remember the milk")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	cached.Wait()

	// Same text, and the same text with different whitespace, hit the cache.
	_, err = cached.Embed(ctx, "remember the milk")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "  remember   the milk ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 2, cached.Dimension())
}

func TestCachingEmbedderPropagatesErrors(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := provider.NewCachingEmbedder(inner, 1<<20)
	require.NoError(t, err)
	defer cached.Close()

	_, err = cached.Embed(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, recallerr.IsEmptyInput(err))
	assert.Zero(t, inner.calls)
}
