// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth authenticates dashboard users. An Authenticator checks an
// email and password against whichever backend owns the accounts; the
// local implementation keeps bcrypt hashes in the user store and adds
// optional TOTP two-factor authentication on top.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidCode is returned when a TOTP code does not validate.
	ErrInvalidCode = errors.New("invalid two-factor code")

	// ErrNotEnrolled is returned when verifying a code for a user that
	// never started TOTP enrolment.
	ErrNotEnrolled = errors.New("two-factor authentication not set up")
)

// Identity is an authenticated dashboard user.
type Identity struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`

	// AccessToken is the hosted service's session token. Empty for local
	// accounts.
	AccessToken string `json:"-"`

	// TOTPRequired is true when the user must present a TOTP code before
	// the session grants dashboard access.
	TOTPRequired bool `json:"totp_required"`
}

// Authenticator establishes and ends dashboard sessions.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	EndSession(ctx context.Context, id *Identity) error
}

// Users is the subset of a user store the local authenticator needs.
type Users interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
}

// dummyHash is compared against when the email is unknown so that a
// failed lookup costs about as much as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("inkwell"), bcrypt.DefaultCost)
	return hash
})

// Local authenticates against accounts in the local user store.
type Local struct {
	users Users
}

// NewLocal creates a Local authenticator.
func NewLocal(users Users) *Local {
	return &Local{users: users}
}

// Authenticate checks email and password.
func (l *Local) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := l.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		TOTPRequired: user.Requires2FA(),
	}, nil
}

// EndSession is a no-op for local accounts; the session lives only in the
// session store.
func (l *Local) EndSession(ctx context.Context, id *Identity) error {
	return nil
}
