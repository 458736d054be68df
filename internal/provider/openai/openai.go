// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

// Package openai adapts any OpenAI-compatible endpoint to the provider
// capabilities. The BaseURL override covers hosted lookalikes such as
// Cerebras.
package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/recall-dev/recall/internal/provider"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Compile-time interface checks.
var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Completer = (*Client)(nil)
)

// Config holds connection and model settings for an OpenAI-compatible
// endpoint.
type Config struct {
	APIKey     string
	BaseURL    string // optional; any chat-completions-compatible host
	EmbedModel string
	ChatModel  string
	Dimensions int // expected embedding output length
}

// Client implements provider.Embedder and provider.Completer over the
// OpenAI embeddings and chat-completions APIs.
type Client struct {
	client openaisdk.Client
	config Config
}

// New creates a new client. Returns an error if the API key is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, recallerr.New(recallerr.CodeProviderRequestInvalid, "openai: missing api_key in config")
	}
	if cfg.Dimensions <= 0 {
		return nil, recallerr.Errorf(recallerr.CodeProviderRequestInvalid, "openai: embedding dimensions must be positive, got %d", cfg.Dimensions)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{client: openaisdk.NewClient(opts...), config: cfg}, nil
}

// Dimension is the fixed embedding output length.
func (c *Client) Dimension() int { return c.config.Dimensions }

// Embed returns the L2-normalized embedding of text. Empty or
// whitespace-only text is rejected rather than embedded as zero.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	normalized := provider.NormalizeText(text)
	if normalized == "" {
		return nil, recallerr.New(recallerr.CodeEmbedEmptyInput, "embedding requested for empty text")
	}

	resp, err := c.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(c.config.EmbedModel),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(normalized),
		},
	})
	if err != nil {
		return nil, recallerr.Errorf(recallerr.CodeProviderUpstreamFailure, "openai: embedding request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, recallerr.New(recallerr.CodeProviderResponseInvalid, "openai: embedding response carried no data")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, x := range resp.Data[0].Embedding {
		vec[i] = float32(x)
	}
	return provider.ValidateVector(vec, c.config.Dimensions)
}

// Complete sends the rendered context block as a single user message and
// returns the generated text with token usage.
func (c *Client) Complete(ctx context.Context, prompt string, opts provider.CompleteOptions) (provider.Completion, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(c.config.ChatModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = param.NewOpt(opts.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return provider.Completion{}, recallerr.Errorf(recallerr.CodeProviderUpstreamFailure, "openai: completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return provider.Completion{}, recallerr.New(recallerr.CodeProviderResponseInvalid, "openai: completion response carried no choices")
	}

	return provider.Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: provider.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}
