// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	recallerr "github.com/recall-dev/recall/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level Recall configuration.
type Config struct {
	Storage    StorageConfig             `mapstructure:"storage" yaml:"storage"`
	Embedding  EmbeddingConfig           `mapstructure:"embedding" yaml:"embedding"`
	Completion CompletionConfig          `mapstructure:"completion" yaml:"completion"`
	Retrieval  RetrievalConfig           `mapstructure:"retrieval" yaml:"retrieval"`
	Context    ContextConfig             `mapstructure:"context" yaml:"context"`
	Providers  map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// StorageConfig locates the note database and the index artifact.
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path" yaml:"db_path"`
	IndexPath string `mapstructure:"index_path" yaml:"index_path"`
}

// EmbeddingConfig selects the embedding model and vector shape.
type EmbeddingConfig struct {
	Provider      string `mapstructure:"provider" yaml:"provider"`
	Model         string `mapstructure:"model" yaml:"model"`
	Dimensions    int    `mapstructure:"dimensions" yaml:"dimensions"`
	CacheMaxBytes int64  `mapstructure:"cache_max_bytes" yaml:"cache_max_bytes"`
}

// CompletionConfig selects the chat completion model.
type CompletionConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// RetrievalConfig sets the per-query retrieval defaults.
type RetrievalConfig struct {
	TopK     int     `mapstructure:"top_k" yaml:"top_k"`
	MinScore float32 `mapstructure:"min_score" yaml:"min_score"`
}

// ContextConfig controls how retrieved snippets become prompt context.
type ContextConfig struct {
	TokenBudget  int    `mapstructure:"token_budget" yaml:"token_budget"`
	SystemPrompt string `mapstructure:"system_prompt" yaml:"system_prompt"`
}

// ProviderConfig holds credentials and endpoint for an API provider.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// DefaultDataDir returns ~/.local/share/recall, falling back to the
// current directory when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "recall")
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix RECALL_).
func Load(path string) (*Config, error) {
	v := viper.New()

	dataDir := DefaultDataDir()

	// Defaults
	v.SetDefault("storage.db_path", filepath.Join(dataDir, "recall.db"))
	v.SetDefault("storage.index_path", filepath.Join(dataDir, "index.bin"))
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimensions", 1024)
	v.SetDefault("embedding.cache_max_bytes", int64(32<<20))
	v.SetDefault("completion.provider", "openai")
	v.SetDefault("completion.model", "gpt-4o-mini")
	v.SetDefault("completion.temperature", 0.4)
	v.SetDefault("retrieval.top_k", 8)
	v.SetDefault("retrieval.min_score", 0.28)
	v.SetDefault("context.token_budget", 900)

	// Environment
	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, recallerr.Errorf(recallerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateCompletion()...)
	errs = append(errs, c.validateRetrieval()...)
	errs = append(errs, c.validateContext()...)

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if c.Storage.DBPath == "" {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "config: storage.db_path must not be empty"))
	}
	if c.Storage.IndexPath == "" {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "config: storage.index_path must not be empty"))
	}

	return errs
}

func (c *Config) validateEmbedding() []error {
	var errs []error

	validProviders := map[string]bool{"openai": true}
	if !validProviders[c.Embedding.Provider] {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: embedding.provider must be one of [openai], got %q",
			c.Embedding.Provider,
		))
	}

	if c.Embedding.Model == "" {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "config: embedding.model must not be empty"))
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: embedding.dimensions must be greater than 0, got %d",
			c.Embedding.Dimensions,
		))
	}

	if c.Embedding.CacheMaxBytes < 0 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: embedding.cache_max_bytes must not be negative, got %d",
			c.Embedding.CacheMaxBytes,
		))
	}

	return errs
}

func (c *Config) validateCompletion() []error {
	var errs []error

	validProviders := map[string]bool{"openai": true, "anthropic": true}
	if !validProviders[c.Completion.Provider] {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: completion.provider must be one of [openai, anthropic], got %q",
			c.Completion.Provider,
		))
	}

	if c.Completion.Model == "" {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "config: completion.model must not be empty"))
	}

	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: completion.temperature must be between 0 and 2, got %g",
			c.Completion.Temperature,
		))
	}

	return errs
}

func (c *Config) validateRetrieval() []error {
	var errs []error

	if c.Retrieval.TopK <= 0 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: retrieval.top_k must be greater than 0, got %d",
			c.Retrieval.TopK,
		))
	}

	if c.Retrieval.MinScore < -1 || c.Retrieval.MinScore > 1 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: retrieval.min_score must be between -1 and 1, got %g",
			c.Retrieval.MinScore,
		))
	}

	return errs
}

func (c *Config) validateContext() []error {
	var errs []error

	if c.Context.TokenBudget <= 0 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: context.token_budget must be greater than 0, got %d",
			c.Context.TokenBudget,
		))
	}

	return errs
}

// Provider returns the credentials block for the named provider, or a
// zero value when none is configured (callers fall back to the
// provider's conventional environment variable).
func (c *Config) Provider(name string) ProviderConfig {
	if c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}
