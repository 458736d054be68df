// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

// Package anthropic adapts the Anthropic Messages API to the Completer
// capability. Anthropic provides no embeddings endpoint, so this package
// implements only completion.
package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/recall-dev/recall/internal/provider"
	recallerr "github.com/recall-dev/recall/pkg/errors"
)

// Compile-time interface check.
var _ provider.Completer = (*Client)(nil)

// defaultMaxTokens bounds completion length; memory-grounded replies are
// expected to be short.
const defaultMaxTokens = 4096

// Config holds Anthropic connection and model settings.
type Config struct {
	APIKey    string
	BaseURL   string // optional, useful for testing against a mock server
	Model     string
	MaxTokens int
}

// Client implements provider.Completer using the Anthropic Messages API.
type Client struct {
	client anthropicsdk.Client
	config Config
}

// New creates a new client. Returns an error if the API key is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, recallerr.New(recallerr.CodeProviderRequestInvalid, "anthropic: missing api_key in config")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{client: anthropicsdk.NewClient(opts...), config: cfg}, nil
}

// Complete sends the rendered context block as a single user message and
// returns the generated text with token usage.
func (c *Client) Complete(ctx context.Context, prompt string, opts provider.CompleteOptions) (provider.Completion, error) {
	maxTokens := int64(c.config.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.config.Model),
		MaxTokens: maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropicsdk.Float(opts.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return provider.Completion{}, recallerr.Errorf(recallerr.CodeProviderUpstreamFailure, "anthropic: completion request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return provider.Completion{
		Text: sb.String(),
		Usage: provider.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}
