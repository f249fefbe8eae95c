// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
)

// Sessions is the part of the session store the auth handlers write to.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// TwoFactor enrols and verifies TOTP codes for local accounts.
type TwoFactor interface {
	Setup(ctx context.Context, userID uuid.UUID, email string) (*auth.Enrolment, error)
	Verify(ctx context.Context, userID uuid.UUID, code string) error
}

// Auth handles login, logout and the optional second factor.
type Auth struct {
	authn     auth.Authenticator
	twoFactor TwoFactor
	sessions  Sessions
}

// NewAuth creates a new Auth handler group. twoFactor may be nil when the
// backend manages its own accounts.
func NewAuth(authn auth.Authenticator, twoFactor TwoFactor, sessions Sessions) *Auth {
	return &Auth{authn: authn, twoFactor: twoFactor, sessions: sessions}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	TwoFADone   bool      `json:"two_fa_done"`
	// TwoFactorAvailable tells the dashboard whether to offer enrolment.
	TwoFactorAvailable bool   `json:"two_factor_available"`
	CSRFToken          string `json:"csrf_token"`
}

func (h *Auth) me(r *http.Request, sess *session.Data) meResponse {
	return meResponse{
		UserID:             sess.UserID,
		Email:              sess.Email,
		DisplayName:        sess.DisplayName,
		TwoFADone:          sess.TwoFADone,
		TwoFactorAvailable: h.twoFactorAvailable(sess),
		CSRFToken:          middleware.CSRFTokenFromCtx(r.Context()),
	}
}

// twoFactorAvailable is true for local accounts when enrolment is wired.
// Hosted accounts carry an access token and handle MFA upstream.
func (h *Auth) twoFactorAvailable(sess *session.Data) bool {
	return h.twoFactor != nil && sess.AccessToken == ""
}

// CSRF returns the token the dashboard must echo in X-CSRF-Token.
func (h *Auth) CSRF(w http.ResponseWriter, r *http.Request) {
	render.OK(w, map[string]string{"csrf_token": middleware.CSRFTokenFromCtx(r.Context())})
}

// Login verifies credentials and starts a session. When the account has
// TOTP enabled the session stays pending until Verify accepts a code.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := render.Decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.authn.Authenticate(r.Context(), in.Email, in.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("failed login attempt", "email", in.Email, "remote", r.RemoteAddr)
		render.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		slog.Error("authentication failed", "error", err)
		render.Error(w, http.StatusServiceUnavailable, "authentication is unavailable")
		return
	}

	sess := session.FromIdentity(id)
	if _, err := h.sessions.Create(r.Context(), w, sess); err != nil {
		slog.Error("session create failed", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("user logged in", "user_id", id.UserID, "totp_required", id.TOTPRequired)
	render.OK(w, h.me(r, sess))
}

// Me returns the signed-in user.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		render.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	render.OK(w, h.me(r, sess))
}

// Logout ends the upstream session, if any, and destroys the local one.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		if err := h.authn.EndSession(r.Context(), sess.Identity()); err != nil {
			slog.Warn("end upstream session failed", "user_id", sess.UserID, "error", err)
		}
	}
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	render.NoContent(w)
}

// TwoFASetup starts TOTP enrolment for a fully signed-in local user and
// returns the secret with its QR code.
func (h *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		render.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !h.twoFactorAvailable(sess) {
		render.Error(w, http.StatusNotFound, "two-factor authentication is not available")
		return
	}
	// A pending login must not replace the secret it is being asked for.
	if !sess.TwoFADone {
		render.Error(w, http.StatusForbidden, "two-factor authentication required")
		return
	}

	enrolment, err := h.twoFactor.Setup(r.Context(), sess.UserID, sess.Email)
	if err != nil {
		slog.Error("2fa setup failed", "user_id", sess.UserID, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	render.OK(w, enrolment)
}

type codeRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify checks a TOTP code. It completes a pending login, or
// confirms a fresh enrolment.
func (h *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		render.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !h.twoFactorAvailable(sess) {
		render.Error(w, http.StatusNotFound, "two-factor authentication is not available")
		return
	}

	var in codeRequest
	if err := render.Decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.twoFactor.Verify(r.Context(), sess.UserID, in.Code)
	switch {
	case errors.Is(err, auth.ErrInvalidCode):
		slog.Warn("failed 2fa attempt", "user_id", sess.UserID, "remote", r.RemoteAddr)
		render.FieldError(w, "code", "Invalid code. Please try again.")
		return
	case errors.Is(err, auth.ErrNotEnrolled):
		render.Error(w, http.StatusBadRequest, "two-factor authentication is not set up")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		render.Error(w, http.StatusUnauthorized, "authentication required")
		return
	case err != nil:
		slog.Error("2fa verify failed", "user_id", sess.UserID, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !sess.TwoFADone {
		sess.TwoFADone = true
		if err := h.sessions.Update(r.Context(), r, sess); err != nil {
			slog.Error("session update failed", "error", err)
			render.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	slog.Info("2fa verified", "user_id", sess.UserID)
	render.OK(w, h.me(r, sess))
}
