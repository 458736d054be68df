// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/recall-dev/recall/internal/chat"
	"github.com/recall-dev/recall/internal/config"
	"github.com/recall-dev/recall/internal/index"
	"github.com/recall-dev/recall/internal/memory"
	"github.com/recall-dev/recall/internal/provider"
	anthropicprov "github.com/recall-dev/recall/internal/provider/anthropic"
	openaiprov "github.com/recall-dev/recall/internal/provider/openai"
	"github.com/recall-dev/recall/internal/store/sqlite"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// App holds the wired subsystems a command needs. Commands that never
// talk to a model (migrate, note, reindex) leave the provider fields nil.
type App struct {
	Config   *config.Config
	Store    *sqlite.Store
	Index    *index.Flat
	Builder  *memory.Builder
	embedder provider.Embedder
	cache    *provider.CachingEmbedder
}

// wireStore opens the note database and the index over it. The index
// artifact is loaded when present; a missing artifact leaves the index
// unbuilt, which searches treat as empty.
func wireStore(cfg *config.Config) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return nil, recallerr.Errorf(recallerr.CodeCLISetupFailure, "creating data directory: %w", err)
	}

	s, err := sqlite.Open(cfg.Storage.DBPath, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, recallerr.Wrap(err, recallerr.CodeCLISetupFailure, "opening note store")
	}

	// The artifact is a cache: a corrupt or mismatched one must not
	// block startup, `recall reindex` rewrites it.
	idx := index.NewFlat(cfg.Embedding.Dimensions, cfg.Storage.IndexPath)
	if err := idx.Load(); err != nil {
		slog.Warn("index artifact unusable, continuing with empty index", "path", cfg.Storage.IndexPath, "error", err)
	}

	return &App{Config: cfg, Store: s, Index: idx}, nil
}

// providerCreds returns the configured credentials for name, falling back
// to the conventional environment variable when the config carries none.
func (a *App) providerCreds(name string) config.ProviderConfig {
	pc := a.Config.Provider(name)
	if pc.APIKey == "" {
		switch name {
		case "openai":
			pc.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			pc.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	return pc
}

// wireEmbedder attaches the configured embedding provider, wrapped in the
// in-process cache when one is enabled.
func (a *App) wireEmbedder() error {
	pc := a.providerCreds(a.Config.Embedding.Provider)
	client, err := openaiprov.New(openaiprov.Config{
		APIKey:     pc.APIKey,
		BaseURL:    pc.BaseURL,
		EmbedModel: a.Config.Embedding.Model,
		ChatModel:  a.Config.Completion.Model,
		Dimensions: a.Config.Embedding.Dimensions,
	})
	if err != nil {
		return recallerr.Wrap(err, recallerr.CodeCLISetupFailure, "creating embedding provider")
	}

	a.embedder = client
	if maxBytes := a.Config.Embedding.CacheMaxBytes; maxBytes > 0 {
		cached, err := provider.NewCachingEmbedder(client, maxBytes)
		if err != nil {
			return recallerr.Wrap(err, recallerr.CodeCLISetupFailure, "creating embedding cache")
		}
		a.embedder = cached
		a.cache = cached
	}

	a.Builder = memory.NewBuilder(a.Store, a.embedder, a.Index)
	return nil
}

// wireCompleter builds the configured chat completion provider.
func (a *App) wireCompleter() (provider.Completer, error) {
	pc := a.providerCreds(a.Config.Completion.Provider)
	switch a.Config.Completion.Provider {
	case "anthropic":
		return anthropicprov.New(anthropicprov.Config{
			APIKey:  pc.APIKey,
			BaseURL: pc.BaseURL,
			Model:   a.Config.Completion.Model,
		})
	default:
		return openaiprov.New(openaiprov.Config{
			APIKey:     pc.APIKey,
			BaseURL:    pc.BaseURL,
			EmbedModel: a.Config.Embedding.Model,
			ChatModel:  a.Config.Completion.Model,
			Dimensions: a.Config.Embedding.Dimensions,
		})
	}
}

// wirePipeline assembles the full chat pipeline.
func (a *App) wirePipeline() (*chat.Pipeline, error) {
	if a.embedder == nil {
		if err := a.wireEmbedder(); err != nil {
			return nil, err
		}
	}
	completer, err := a.wireCompleter()
	if err != nil {
		return nil, err
	}

	assembler := memory.NewAssembler(a.Config.Context.SystemPrompt, a.Config.Context.TokenBudget, nil)
	retriever := memory.NewRetriever(a.Index, a.Store)

	return chat.NewPipeline(a.embedder, retriever, assembler, completer), nil
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	if a.cache != nil {
		a.cache.Close()
	}
	return a.Store.Close()
}
