// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"fmt"

	"github.com/recall-dev/recall/internal/memory"
	"github.com/spf13/cobra"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the similarity index from stored embeddings",
		Long:  "Loads every stored embedding, rebuilds the in-memory index from scratch, and persists the artifact. Run after bulk imports or to drop deleted notes from the index.",
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

			// Rebuild reads only the store, no embedder needed.
			builder := memory.NewBuilder(app.Store, nil, app.Index)
			if err := builder.Rebuild(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "index rebuilt: %d vector(s), artifact at %s\n", app.Index.Size(), cfg.Storage.IndexPath)
			return err
		},
	}
}
