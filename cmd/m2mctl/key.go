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
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/m2m/keys"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Key hierarchy management: generate, derive, list, rotate",
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

// loadMasterKey reads a hex-encoded master key either directly from a
// string (if it decodes as hex) or from a file path.
func loadMasterKey(masterArg string) (*keys.KeyMaterial, error) {
	raw := strings.TrimSpace(masterArg)
	if decoded, err := hex.DecodeString(raw); err == nil && len(raw) > 0 {
		return keys.New(decoded)
	}
	data, err := os.ReadFile(masterArg)
	if err != nil {
		return nil, fmt.Errorf("reading master key file: %w", err)
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("master key file is not hex-encoded: %w", err)
	}
	return keys.New(decoded)
}
