// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// ContactSubmission is a message left through the public contact form.
// It is written once and never read back by the site.
type ContactSubmission struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Subject     *string `json:"subject"`
	Message     string  `json:"message"`
	InquiryType *string `json:"inquiry_type"`
}
