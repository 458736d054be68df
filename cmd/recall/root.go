// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/recall-dev/recall/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root recall command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recall",
		Short:         "recall — long-term semantic memory for a personal assistant",
		Long:          "Recall stores free-form notes, embeds them, and retrieves the most relevant ones to ground assistant replies.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newVersionCmd(),
		newMigrateCmd(),
		newBackfillCmd(),
		newReindexCmd(),
		newQueryCmd(),
		newNoteCmd(),
		newChatCmd(),
		newConfigCmd(),
	)

	return root
}

// loadConfig resolves the config file for a command invocation: the
// --config flag wins; otherwise the default location is used when it
// exists, bootstrapping a commented default there on first run.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.Load(path)
	}

	path, err := config.DefaultConfigPath()
	if err != nil {
		return config.Load("")
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if bootstrapped := config.BootstrapConfig(); bootstrapped != "" {
			return config.Load(bootstrapped)
		}
		return config.Load("")
	}
	return config.Load(path)
}
