// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	recallerr "github.com/recall-dev/recall/pkg/errors"
	"github.com/spf13/cobra"
)

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
		Long:  "Add, remove, and list the notes that feed the memory index.",
	}

	cmd.AddCommand(
		newNoteAddCmd(),
		newNoteRmCmd(),
		newNoteLsCmd(),
	)

	return cmd
}

func newNoteAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [text]",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return recallerr.New(recallerr.CodeCLIInputInvalid, "note text must not be empty")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			app, err := wireStore(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			id, err := app.Store.Add(cmd.Context(), text, time.Now().Unix())
			if err != nil {
				return err
			}

			// The note becomes searchable after `recall backfill`.
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added note %d\n", id)
			return err
		},
	}
}

func newNoteRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return recallerr.Errorf(recallerr.CodeCLIInputInvalid, "invalid note id %q", args[0])
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			app, err := wireStore(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if purge, _ := cmd.Flags().GetBool("purge"); purge {
				err = app.Store.Purge(cmd.Context(), id)
			} else {
				err = app.Store.Delete(cmd.Context(), id)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed note %d\n", id)
			return err
		},
	}

	cmd.Flags().Bool("purge", false, "hard-delete the note and its embedding")

	return cmd
}

func newNoteLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List recent notes",
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

			limit, _ := cmd.Flags().GetInt("limit")
			notes, err := app.Store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, n := range notes {
				when := time.Unix(n.TS, 0).Format("2006-01-02 15:04")
				if _, err := fmt.Fprintf(out, "%6d  %s  %s\n", n.ID, when, n.Text); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum notes to list")

	return cmd
}
