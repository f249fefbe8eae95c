// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"net/mail"

	"github.com/spf13/cobra"

	"inkwell/internal/store"
)

// minPasswordLen applies to accounts created from the command line.
const minPasswordLen = 8

var (
	userEmail    string
	userPassword string
	userName     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard accounts",
	Long: `Manage the local dashboard accounts stored in PostgreSQL.

Hosted REST backends manage their own accounts and are not supported.`,
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a dashboard account",
	Example: `  inkwell user create --email editor@example.com --password 's3cret-pass' --name Editor`,
	RunE: runUserCreate,
}

func init() {
	userCmd.AddCommand(userCreateCmd)

	f := userCreateCmd.Flags()
	f.StringVar(&userEmail, "email", "", "login email (required)")
	f.StringVar(&userPassword, "password", "", "login password (required)")
	f.StringVar(&userName, "name", "", "display name, defaults to the email")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	if err := validateUser(userEmail, userPassword); err != nil {
		return err
	}
	name := userName
	if name == "" {
		name = userEmail
	}

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := store.NewUserStore(db).CreateUser(cmd.Context(), userEmail, userPassword, name)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Email, u.ID)
	return nil
}

func validateUser(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
