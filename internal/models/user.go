package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard account held by the local user store. Accounts
// managed by a hosted auth service never appear here.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA enrolment
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Requires2FA returns true if the user has completed TOTP enrolment and
// must present a code after the password check.
func (u *User) Requires2FA() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}
