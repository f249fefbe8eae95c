// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/content"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/remote"
	"inkwell/internal/store"
	"inkwell/internal/store/memstore"
)

// backend bundles the content store with the account services that
// belong to it.
type backend struct {
	store     content.Store
	authn     auth.Authenticator
	twoFactor handlers.TwoFactor

	// attachToken is set when the store acts on behalf of the signed-in
	// user's access token.
	attachToken func(ctx context.Context, token string) context.Context

	close func() error
}

// openBackend builds the backend selected by STORE_URL. PostgreSQL is
// migrated on open and seeded in development.
func openBackend(ctx context.Context, c *config.Config) (*backend, error) {
	switch c.Backend {
	case config.BackendPostgres:
		db, err := openDatabase(ctx, c)
		if err != nil {
			return nil, err
		}
		if c.IsDev() {
			if err := database.Seed(db); err != nil {
				db.Close()
				return nil, fmt.Errorf("seed database: %w", err)
			}
		}
		users := store.NewUserStore(db)
		return &backend{
			store:     store.New(db),
			authn:     auth.NewLocal(users),
			twoFactor: auth.NewTwoFactor(users, ""),
			close:     db.Close,
		}, nil

	case config.BackendREST:
		client, err := remote.New(remote.Config{URL: c.StoreURL, Key: c.StoreKey})
		if err != nil {
			return nil, err
		}
		slog.Info("using hosted store", "url", c.StoreURL)
		return &backend{
			store:       client,
			authn:       remote.NewAuthenticator(client),
			attachToken: remote.WithAccessToken,
			close:       func() error { return nil },
		}, nil

	case config.BackendMemory:
		mem := memstore.New()
		if _, err := mem.CreateUser(ctx, database.DefaultAdminEmail, "admin", "Admin"); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		slog.Warn("using in-memory store, all content is lost on exit",
			"email", database.DefaultAdminEmail)
		return &backend{
			store:     mem,
			authn:     auth.NewLocal(mem),
			twoFactor: auth.NewTwoFactor(mem, ""),
			close:     func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unsupported backend %q", c.Backend)
}

// openDatabase connects to PostgreSQL and applies pending migrations.
func openDatabase(ctx context.Context, c *config.Config) (*sql.DB, error) {
	if c.Backend != config.BackendPostgres {
		return nil, fmt.Errorf("%s backend has no database to manage", c.Backend)
	}
	db, err := database.Connect(ctx, c.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
