// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

// ErrDuplicateEmail is returned when a user with the same email exists.
var ErrDuplicateEmail = fmt.Errorf("memstore: duplicate email: %w", query.ErrConflict)

// FindUserByEmail returns the user with the given email, or nil.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// FindUserByID returns the user with the given id, or nil.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// CreateUser stores a user with a bcrypt-hashed password.
func (s *Store) CreateUser(ctx context.Context, email, password, displayName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, fmt.Errorf("create user %q: %w", email, ErrDuplicateEmail)
		}
	}
	now := s.now()
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return &u, nil
}

// SetTOTPSecret stores a pending TOTP secret.
func (s *Store) SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	return s.updateUser(userID, func(u *models.User) { u.TOTPSecret = &secret })
}

// EnableTOTP marks two-factor authentication active.
func (s *Store) EnableTOTP(ctx context.Context, userID uuid.UUID) error {
	return s.updateUser(userID, func(u *models.User) { u.TOTPEnabled = true })
}

func (s *Store) updateUser(id uuid.UUID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("update user %s: not found", id)
	}
	fn(&u)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}
