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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sage-x-project/m2m/internal/logger"
	"github.com/sage-x-project/m2m/keyring"
	"github.com/sage-x-project/m2m/keyring/memory"
	"github.com/sage-x-project/m2m/keyring/postgres"
)

// storeFlags are the flags shared by every subcommand that opens a
// keyring.Store: --store selects the backend, the rest configure the
// postgres backend and are ignored for memory.
type storeFlags struct {
	backend  string
	pgHost   string
	pgPort   int
	pgUser   string
	pgPass   string
	pgDBName string
	pgSSL    string
}

func addStoreFlags(fs *pflag.FlagSet, f *storeFlags) {
	fs.StringVar(&f.backend, "store", "memory", "keyring backend: memory, postgres")
	fs.StringVar(&f.pgHost, "pg-host", "localhost", "postgres host")
	fs.IntVar(&f.pgPort, "pg-port", 5432, "postgres port")
	fs.StringVar(&f.pgUser, "pg-user", "m2m", "postgres user")
	fs.StringVar(&f.pgPass, "pg-password", "", "postgres password")
	fs.StringVar(&f.pgDBName, "pg-database", "m2m", "postgres database")
	fs.StringVar(&f.pgSSL, "pg-sslmode", "disable", "postgres sslmode")
}

// applyStoreConfigDefaults overrides any storeFlags field the user left
// at its flag default with the loaded config's KeyStore settings, the
// same "config fills in what the CLI flags didn't override" idiom the
// teacher's config package establishes.
func applyStoreConfigDefaults(cmd *cobra.Command, f *storeFlags) {
	if appConfig == nil {
		return
	}
	flags := cmd.Flags()
	if !flags.Changed("store") && appConfig.KeyStore.Type != "" {
		f.backend = appConfig.KeyStore.Type
	}
	pg := appConfig.KeyStore.Postgres
	if !flags.Changed("pg-host") && pg.Host != "" {
		f.pgHost = pg.Host
	}
	if !flags.Changed("pg-port") && pg.Port != 0 {
		f.pgPort = pg.Port
	}
	if !flags.Changed("pg-user") && pg.User != "" {
		f.pgUser = pg.User
	}
	if !flags.Changed("pg-password") && pg.Password != "" {
		f.pgPass = pg.Password
	}
	if !flags.Changed("pg-database") && pg.Database != "" {
		f.pgDBName = pg.Database
	}
	if !flags.Changed("pg-sslmode") && pg.SSLMode != "" {
		f.pgSSL = pg.SSLMode
	}
}

func openStore(ctx context.Context, cmd *cobra.Command, f *storeFlags) (keyring.Store, error) {
	applyStoreConfigDefaults(cmd, f)
	logger.Debug("opening keyring store", logger.String("backend", f.backend))
	switch f.backend {
	case "memory":
		return memory.NewStore(), nil
	case "postgres":
		return postgres.NewStore(ctx, postgres.Config{
			Host:     f.pgHost,
			Port:     f.pgPort,
			User:     f.pgUser,
			Password: f.pgPass,
			Database: f.pgDBName,
			SSLMode:  f.pgSSL,
		})
	default:
		return nil, fmt.Errorf("unknown --store backend: %s", f.backend)
	}
}
