// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"inkwell/internal/database"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations",
	Long: `Apply every pending migration to the PostgreSQL store and exit.

Only valid when STORE_URL is a postgres:// URL. With --seed, an empty
database also receives the default admin account and categories.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "seed an empty database after migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateSeed {
		if err := database.Seed(db); err != nil {
			return err
		}
	}
	slog.Info("database is up to date")
	return nil
}
