// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import "errors"

var (
	// ErrValidation is returned when input fails a required-field check.
	// It is raised before any store call. Handlers map it to 422.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned by mutations that target a missing entity.
	// Reads never return it: a missing article is a nil result.
	ErrNotFound = errors.New("not found")

	// ErrLoadFailed wraps any store error on a read path.
	ErrLoadFailed = errors.New("load failed")

	// ErrSaveFailed wraps any store error on a mutation path.
	ErrSaveFailed = errors.New("save failed")

	// ErrTagsInconsistent marks a tag replace that failed after the article
	// itself was saved. The article may be left with fewer tags than
	// selected, or none.
	ErrTagsInconsistent = errors.New("tags may be inconsistent")
)

// ValidationError names the offending field. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
