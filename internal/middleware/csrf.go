package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"inkwell/internal/render"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (32 bytes = 64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "inkwell_csrf"

	// CSRFHeaderName is the header the dashboard client echoes the token in.
	CSRFHeaderName = "X-CSRF-Token"
)

// csrfKey is the context key for the request's CSRF token.
const csrfKey contextKey = "csrf"

// NewCSRF provides double-submit cookie CSRF protection. It generates a
// token stored in a cookie readable by the dashboard script and validates
// that state-changing requests (POST, PUT, PATCH, DELETE) echo the same
// token in the X-CSRF-Token header. secure marks the cookie Secure.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return csrf(next, secure)
	}
}

func csrf(next http.Handler, secure bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Ensure a CSRF token cookie exists.
		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			token, err := generateCSRFToken()
			if err != nil {
				render.Error(w, http.StatusInternalServerError, "internal server error")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: false, // the dashboard reads it to set the header
				Secure:   secure,
				SameSite: http.SameSiteStrictMode,
			})
			cookie = &http.Cookie{Value: token}
		}
		r = r.WithContext(context.WithValue(r.Context(), csrfKey, cookie.Value))

		// Safe methods don't need CSRF validation.
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		submitted := r.Header.Get(CSRFHeaderName)
		if submitted == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) != 1 {
			render.Error(w, http.StatusForbidden, "CSRF token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CSRFTokenFromCtx returns the token the CSRF middleware stored in the
// request context, or "" outside of it.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

// generateCSRFToken creates a cryptographically random token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
