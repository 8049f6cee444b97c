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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listFlags storeFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List keys in a keyring store",
	Long: `List every KeyId held in a keyring store.

The memory backend only holds keys inserted during the same process,
so listing it from a fresh m2mctl invocation always reports empty;
use --store postgres against a shared database to see a persisted set.`,
	Example: `  # List keys in a postgres-backed keyring
  m2mctl key list --store postgres --pg-host db.internal --pg-database m2m`,
	RunE: runList,
}

func init() {
	keyCmd.AddCommand(listCmd)
	addStoreFlags(listCmd.Flags(), &listFlags)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx, cmd, &listFlags)
	if err != nil {
		return fmt.Errorf("opening keyring store: %w", err)
	}
	defer store.Close()

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing keys: %w", err)
	}
	if len(ids) == 0 {
		fmt.Println("No keys found in store")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KEY ID\n")
	fmt.Fprintf(w, "------\n")
	for _, id := range ids {
		fmt.Fprintf(w, "%s\n", id.String())
	}
	w.Flush()

	fmt.Printf("\nTotal keys: %d\n", len(ids))
	return nil
}
