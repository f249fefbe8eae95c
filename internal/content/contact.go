// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"net/mail"
	"strings"

	"inkwell/internal/models"
)

// Inquiry types offered by the contact form.
var inquiryTypes = map[string]bool{
	"collaboration": true,
	"media":         true,
	"brand":         true,
	"general":       true,
}

// SubmitContact stores a contact form message. Name, email and message are
// required; the email must parse as an address.
func (e *Editor) SubmitContact(ctx context.Context, s models.ContactSubmission) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
	s.Subject = nullIfEmpty(s.Subject)
	s.InquiryType = nullIfEmpty(s.InquiryType)

	switch {
	case s.Name == "":
		return invalid("name", "Name is required")
	case s.Email == "":
		return invalid("email", "Email is required")
	case s.Message == "":
		return invalid("message", "Message is required")
	}
	if addr, err := mail.ParseAddress(s.Email); err != nil || addr.Address != s.Email {
		return invalid("email", "Email address is not valid")
	}
	if s.InquiryType != nil && !inquiryTypes[*s.InquiryType] {
		return invalid("inquiry_type", "Unknown inquiry type")
	}

	if err := e.store.InsertContactSubmission(ctx, s); err != nil {
		return saveFailed("submit contact", err)
	}
	return nil
}
