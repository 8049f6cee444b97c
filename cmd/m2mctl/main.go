// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/m2m/config"
	"github.com/sage-x-project/m2m/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "m2mctl",
	Short: "m2m key and frame management CLI",
	Long: `m2mctl manages M2M v1 key material and inspects wire frames.

This tool supports:
- Org master key generation
- Agent and session key derivation from the key hierarchy
- Listing keys held in a keyring store (memory or postgres)
- Key rotation
- Encoding and decoding M2M v1 frames for debugging`,
	PersistentPreRunE: loadAppConfig,
}

var (
	configPath string
	appConfig  *config.Config
)

// loadAppConfig reads --config (if given) into appConfig and points the
// package-level logger at the resulting logging level, so every
// subcommand logs through the same structured logger the rest of the
// module uses rather than writing ad-hoc fmt.Println diagnostics.
func loadAppConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		appConfig, err = config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("loading --config: %w", err)
		}
	} else {
		appConfig = config.Default()
	}

	level := logger.InfoLevel
	switch appConfig.Logging.Level {
	case "debug":
		level = logger.DebugLevel
	case "warn":
		level = logger.WarnLevel
	case "error":
		level = logger.ErrorLevel
	}
	logger.GetDefaultLogger().SetLevel(level)
	logger.Debug("m2mctl starting", logger.String("command", cmd.Name()))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Err("m2mctl command failed", logger.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an m2m config YAML file (defaults applied if omitted)")
}
