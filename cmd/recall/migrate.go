// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the note database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Opening the store applies the schema.
			app, err := wireStore(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "database ready at %s\n", cfg.Storage.DBPath)
			return err
		},
	}
}
