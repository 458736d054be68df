// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package provider

import (
	"context"

	"github.com/dgraph-io/ristretto"

	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Compile-time interface check.
var _ Embedder = (*CachingEmbedder)(nil)

// CachingEmbedder wraps an Embedder with an in-process ristretto cache so
// repeated queries (the same question asked twice, a note re-synced) skip
// model inference. Keys are normalized text; embeddings are deterministic
// for a fixed model, so entries never expire.
type CachingEmbedder struct {
	inner Embedder
	cache *ristretto.Cache
}

// NewCachingEmbedder wraps inner with a cache bounded to roughly
// maxBytes of vector data.
func NewCachingEmbedder(inner Embedder, maxBytes int64) (*CachingEmbedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, recallerr.Errorf(recallerr.CodeCLISetupFailure, "creating embedding cache: %w", err)
	}
	return &CachingEmbedder{inner: inner, cache: cache}, nil
}

// Dimension is the wrapped embedder's fixed output length.
func (c *CachingEmbedder) Dimension() int { return c.inner.Dimension() }

// Embed returns the cached vector for text if present, otherwise embeds
// and caches it. Errors are never cached.
func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := NormalizeText(text)
	if val, ok := c.cache.Get(key); ok {
		if vec, ok := val.([]float32); ok {
			return vec, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vec, int64(len(vec)*4))
	return vec, nil
}

// Wait blocks until pending cache writes are visible. Intended for tests.
func (c *CachingEmbedder) Wait() { c.cache.Wait() }

// Close releases cache resources.
func (c *CachingEmbedder) Close() { c.cache.Close() }
