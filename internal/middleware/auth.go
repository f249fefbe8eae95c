// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"inkwell/internal/render"
	"inkwell/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// SessionGetter loads the session for a request. *session.Store
// implements it.
type SessionGetter interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// LoadSession retrieves the session from Valkey and stores it in the
// request context. Downstream handlers can access it via SessionFromCtx().
// It does not enforce authentication.
func LoadSession(store SessionGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				// Treat as unauthenticated.
				slog.Warn("session load failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				r = r.WithContext(WithSession(r.Context(), data))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a session with 401.
// Must be applied after LoadSession in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			render.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Require2FA rejects sessions whose second factor is still pending with
// 403. Must be applied after RequireAuth.
func Require2FA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess != nil && !sess.TwoFADone {
			render.Error(w, http.StatusForbidden, "two-factor authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ForwardToken hands the session's access token to the store layer via
// attach, so writes run as the signed-in user. Sessions without a token
// pass through unchanged.
func ForwardToken(attach func(ctx context.Context, token string) context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess := SessionFromCtx(r.Context()); sess != nil && sess.AccessToken != "" {
				r = r.WithContext(attach(r.Context(), sess.AccessToken))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a context carrying data.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
