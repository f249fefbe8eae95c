// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Inkwell content server. It
// loads configuration from the environment and dispatches to the serve,
// migrate and user subcommands. Running the binary without a subcommand
// starts the server.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"inkwell/internal/config"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Inkwell blog content server",
	Long: `Inkwell serves a blog's articles, categories and tags as a JSON API
and hosts the editor dashboard API.

Configuration is read from the environment. STORE_URL selects the
backend: postgres:// for PostgreSQL, http(s):// for a hosted REST
service, memory:// for a throwaway in-process store.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg))
	slog.Info("configuration loaded", "env", cfg.Env, "backend", cfg.Backend)
	return nil
}

// newLogger outputs text in development and JSON everywhere else.
func newLogger(c *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
