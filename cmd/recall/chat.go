// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recall-dev/recall/internal/chat"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [text]",
		Short: "Answer a message grounded in stored memories",
		Long:  "With text arguments, handles a single turn and prints the response as JSON. Without arguments, reads one JSON request per line from stdin and writes one JSON response per line to stdout, the helper-process protocol. A readiness line goes to stderr once the index is searchable.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			app, err := wireStore(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			pipeline, err := app.wirePipeline()
			if err != nil {
				return err
			}

			// Make sure something is searchable before the first turn.
			if err := app.Builder.EnsureReady(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 0 {
				// Handshake: the client blocks on this line before
				// sending its first request, so it must come after the
				// index is searchable and before the loop starts.
				if _, err := fmt.Fprintln(cmd.ErrOrStderr(), "recall ready"); err != nil {
					return err
				}
				return chat.RunLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), pipeline)
			}

			resp, err := pipeline.Handle(cmd.Context(), chat.Request{
				UserText: strings.Join(args, " "),
				Opts: chat.Options{
					TopK:        cfg.Retrieval.TopK,
					MinScore:    cfg.Retrieval.MinScore,
					Temperature: cfg.Completion.Temperature,
				},
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	return cmd
}
