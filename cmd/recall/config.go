// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Never echo credentials.
			for name, pc := range cfg.Providers {
				if pc.APIKey != "" {
					pc.APIKey = "[redacted]"
					cfg.Providers[name] = pc
				}
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
