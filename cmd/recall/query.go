// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"encoding/json"
	"strings"

	"github.com/recall-dev/recall/internal/memory"
	recallerr "github.com/recall-dev/recall/pkg/errors"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Find the notes nearest to a text or to an existing note",
		Long:  "Embeds the given text and prints the nearest notes as JSON. With --note-id, searches by a stored note's own embedding instead, excluding the note itself from the results.",
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

			topK, _ := cmd.Flags().GetInt("top-k")
			if topK <= 0 {
				topK = cfg.Retrieval.TopK
			}
			minScore, _ := cmd.Flags().GetFloat32("min-score")
			if !cmd.Flags().Changed("min-score") {
				minScore = cfg.Retrieval.MinScore
			}

			retriever := memory.NewRetriever(app.Index, app.Store)

			var snippets []memory.Snippet
			if noteID, _ := cmd.Flags().GetInt64("note-id"); noteID != 0 {
				vec, err := app.Store.Embedding(cmd.Context(), noteID)
				if err != nil {
					return err
				}
				snippets, err = retriever.Retrieve(cmd.Context(), vec, topK, minScore, &noteID)
				if err != nil {
					return err
				}
			} else {
				text := strings.TrimSpace(strings.Join(args, " "))
				if text == "" {
					return recallerr.New(recallerr.CodeCLIInputInvalid, "provide query text or --note-id")
				}
				if err := app.wireEmbedder(); err != nil {
					return err
				}
				vec, err := app.embedder.Embed(cmd.Context(), text)
				if err != nil {
					return err
				}
				snippets, err = retriever.Retrieve(cmd.Context(), vec, topK, minScore, nil)
				if err != nil {
					return err
				}
			}

			if snippets == nil {
				snippets = []memory.Snippet{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snippets)
		},
	}

	cmd.Flags().Int("top-k", 0, "number of results (default from config)")
	cmd.Flags().Float32("min-score", 0, "minimum similarity score (default from config)")
	cmd.Flags().Int64("note-id", 0, "search by a stored note's embedding")

	return cmd
}
