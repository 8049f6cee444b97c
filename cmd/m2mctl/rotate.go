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
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/m2m/keyring"
	"github.com/sage-x-project/m2m/keys"
)

var (
	rotateFlags  storeFlags
	rotateKeyID  string
	rotateKeepOld bool
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate a key in a keyring store",
	Long: `Rotate a key held in a keyring store, replacing it with a fresh
random key of the same length under a newly generated KeyId.

Unlike an in-process keys.Keyring, a keyring.Store has no Rotate method
of its own: rotation here is expressed as put-new-then-delete-old
(optionally skipping the delete with --keep-old), since the durable
store is a dumb key/value table and the hierarchy it backs owns the
rotation policy.`,
	Example: `  # Rotate a key, discarding the old record
  m2mctl key rotate --store postgres --id 0123...cdef

  # Rotate a key, keeping the old record too
  m2mctl key rotate --store postgres --id 0123...cdef --keep-old`,
	RunE: runRotate,
}

func init() {
	keyCmd.AddCommand(rotateCmd)
	addStoreFlags(rotateCmd.Flags(), &rotateFlags)
	rotateCmd.Flags().StringVar(&rotateKeyID, "id", "", "KeyId (hex) to rotate (required)")
	rotateCmd.Flags().BoolVar(&rotateKeepOld, "keep-old", false, "keep the old record instead of deleting it")
	rotateCmd.MarkFlagRequired("id")
}

func runRotate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx, cmd, &rotateFlags)
	if err != nil {
		return fmt.Errorf("opening keyring store: %w", err)
	}
	defer store.Close()

	oldID, err := keys.ParseKeyId(rotateKeyID)
	if err != nil {
		return fmt.Errorf("invalid --id: %w", err)
	}

	oldRec, err := store.Get(ctx, oldID)
	if err != nil {
		return fmt.Errorf("loading existing key: %w", err)
	}

	newBytes := make([]byte, len(oldRec.Bytes))
	if _, err := io.ReadFull(rand.Reader, newBytes); err != nil {
		return fmt.Errorf("generating replacement key: %w", err)
	}
	newID := keys.NewKeyId()

	if err := store.Put(ctx, keyring.Record{ID: newID, Bytes: newBytes, CreatedAt: time.Now()}); err != nil {
		return fmt.Errorf("storing new key: %w", err)
	}

	if !rotateKeepOld {
		if err := store.Delete(ctx, oldID); err != nil {
			return fmt.Errorf("deleting old key: %w", err)
		}
	}

	fmt.Println("Key rotation successful!")
	fmt.Printf("  Old Key ID: %s\n", oldID)
	fmt.Printf("  New Key ID: %s\n", newID)
	if rotateKeepOld {
		fmt.Printf("  Old key retained in store\n")
	}
	return nil
}
