// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Recall Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	recallerr "github.com/recall-dev/recall/pkg/errors"
)

//go:embed recall.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/recall/recall.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", recallerr.Errorf(recallerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "recall", "recall.yaml"), nil
}

// BootstrapConfig drops the commented starter config at the default path
// on first run and returns that path. Best-effort: an existing file, an
// unresolvable home, or a write failure all yield an empty string and the
// process carries on with built-in defaults.
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("starter config skipped", "error", err)
		return ""
	}
	if _, err := os.Stat(cfgPath); err == nil {
		return ""
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		slog.Debug("starter config skipped", "path", cfgPath, "error", err)
		return ""
	}
	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("starter config skipped", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("wrote starter config", "path", cfgPath)
	return cfgPath
}
