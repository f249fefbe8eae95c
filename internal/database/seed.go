// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminEmail is the account Seed creates on an empty database.
const DefaultAdminEmail = "admin@inkwell.local"

// defaultCategories are created once so a fresh site has navigation.
var defaultCategories = []struct {
	name, slug string
	order      int
}{
	{"Essays", "essays", 1},
	{"Notes", "notes", 2},
	{"Reviews", "reviews", 3},
}

// Seed populates an empty database with a dashboard user and the default
// categories. Each part is skipped when its table already has rows.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedCategories(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
	`, DefaultAdminEmail, string(hash), "Admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", DefaultAdminEmail,
		"password", "admin",
	)
	return nil
}

func seedCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug, display_order)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO NOTHING
		`, c.name, c.slug, c.order)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.slug, err)
		}
	}

	slog.Info("database seeded with default categories", "count", len(defaultCategories))
	return nil
}
