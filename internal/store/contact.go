// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell/internal/models"
)

// ContactStore writes contact form submissions.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore returns a new ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

// InsertContactSubmission stores one submission.
func (s *ContactStore) InsertContactSubmission(ctx context.Context, sub models.ContactSubmission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_submissions (name, email, subject, message, inquiry_type)
		VALUES ($1, $2, $3, $4, $5)
	`, sub.Name, sub.Email, sub.Subject, sub.Message, sub.InquiryType)
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}
