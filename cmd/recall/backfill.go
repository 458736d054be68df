// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed notes that have no stored embedding",
		Long:  "Scans for notes missing an embedding, embeds them in batches, and rebuilds the index so new notes become searchable.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			app, err := wireStore(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.wireEmbedder(); err != nil {
				return err
			}

			batchSize, _ := cmd.Flags().GetInt("batch-size")
			embedded, err := app.Builder.Sync(cmd.Context(), batchSize)
			if err != nil {
				return err
			}

			if embedded > 0 {
				if err := app.Builder.Rebuild(cmd.Context()); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "embedded %d note(s)\n", embedded)
			return err
		},
	}

	cmd.Flags().Int("batch-size", 16, "notes to embed per batch")

	return cmd
}
