// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/content"
	"inkwell/internal/query"
	"inkwell/internal/render"
)

// writeError maps a content or store error to its HTTP response. The
// content layer has already logged load and save failures; their cause is
// never echoed back.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		render.FieldError(w, verr.Field, verr.Message)
	case errors.Is(err, render.ErrBadBody):
		render.Error(w, http.StatusBadRequest, render.ErrBadBody.Error())
	case errors.Is(err, content.ErrNotFound):
		render.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, query.ErrConflict):
		render.Error(w, http.StatusConflict, "slug already in use")
	case errors.Is(err, content.ErrLoadFailed):
		render.Error(w, http.StatusServiceUnavailable, "content could not be loaded")
	case errors.Is(err, content.ErrSaveFailed):
		render.Error(w, http.StatusServiceUnavailable, "changes could not be saved")
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
