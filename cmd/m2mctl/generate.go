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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	genOutputFile string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new org master key",
	Long: `Generate a new 32-byte org master key and print it as hex.

The master key is the root of an org's key hierarchy: every agent key
and session key is derived from it via HKDF-SHA256 (m2mctl key derive).
Treat the output as a secret: anyone holding it can derive every key
for the org.`,
	Example: `  # Generate a master key and print it to stdout
  m2mctl key generate

  # Generate a master key and save it to a file
  m2mctl key generate --output master.key`,
	RunE: runGenerate,
}

func init() {
	keyCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genOutputFile, "output", "o", "", "output file (default: stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	secret := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return fmt.Errorf("generating master key: %w", err)
	}
	encoded := hex.EncodeToString(secret)

	if genOutputFile == "" {
		fmt.Println(encoded)
		return nil
	}
	if err := os.WriteFile(genOutputFile, []byte(encoded+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing master key: %w", err)
	}
	fmt.Printf("Master key saved to: %s\n", genOutputFile)
	return nil
}
