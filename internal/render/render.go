// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render writes JSON API responses. Every error leaves the server
// in the same envelope, so clients only need one decoder for failures.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// MaxBodyBytes caps the size of a decoded request body.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON envelope of an error response.
type ErrorBody struct {
	Error string `json:"error"`
	// Field names the offending input for validation failures.
	Field string `json:"field,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// FieldError writes a 422 envelope naming the invalid field.
func FieldError(w http.ResponseWriter, field, message string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{Error: message, Field: field})
}

// ErrBadBody is returned by Decode for malformed or oversized bodies.
var ErrBadBody = errors.New("malformed request body")

// Decode reads a JSON body into v. The body is capped at MaxBodyBytes
// and must hold exactly one JSON value.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadBody, err)
	}
	if dec.Decode(&struct{}{}) != io.EOF {
		return fmt.Errorf("%w: trailing data", ErrBadBody)
	}
	return nil
}
