// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. It organizes routes into a public group and an admin group
// with appropriate middleware stacks.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
)

// Sessions is the session store seen by both the middleware and the auth
// handlers.
type Sessions interface {
	middleware.SessionGetter
	handlers.Sessions
}

// Deps holds everything the router wires together.
type Deps struct {
	Sessions Sessions
	Public   *handlers.Public
	Auth     *handlers.Auth
	Admin    *handlers.Admin

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool

	// AttachToken forwards the session's access token to the store on
	// dashboard requests. Nil when the backend does not use one.
	AttachToken func(ctx context.Context, token string) context.Context

	// Optional per-IP limits for login, 2FA and contact submissions.
	LoginLimiter   *middleware.RateLimiter
	ContactLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(d.CORSOrigins))

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	jsonBody := middleware.MaxBodySize(render.MaxBodyBytes)
	loginLimit := limit(d.LoginLimiter)

	// Public read API.
	r.Route("/api", func(r chi.Router) {
		r.Use(jsonBody)

		r.Get("/articles/featured", d.Public.Featured)
		r.Get("/articles", d.Public.Articles)
		r.Get("/articles/{slug}", d.Public.Article)
		r.Get("/categories", d.Public.Categories)
		r.Get("/tags", d.Public.Tags)
		r.With(limit(d.ContactLimiter)).Post("/contact", d.Public.Contact)
	})

	// Dashboard API: session and CSRF on every route.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))
		r.Use(middleware.NewCSRF(d.SecureCookies))

		r.Get("/csrf", d.Auth.CSRF)
		r.With(jsonBody, loginLimit).Post("/login", d.Auth.Login)

		// Signed in, second factor possibly pending.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", d.Auth.Me)
			r.Post("/logout", d.Auth.Logout)
			r.With(jsonBody, loginLimit).Post("/2fa/verify", d.Auth.TwoFAVerify)
		})

		// Fully authenticated dashboard.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			if d.AttachToken != nil {
				r.Use(middleware.ForwardToken(d.AttachToken))
			}

			r.Post("/2fa/setup", d.Auth.TwoFASetup)

			r.Route("/articles", func(r chi.Router) {
				// Cover uploads carry their own, larger, limit.
				r.With(middleware.MaxBodySize(handlers.MaxCoverBytes+1<<20)).
					Post("/{id}/cover", d.Admin.UploadCover)

				r.Group(func(r chi.Router) {
					r.Use(jsonBody)
					r.Get("/", d.Admin.ListArticles)
					r.Post("/", d.Admin.CreateArticle)
					r.Get("/{id}", d.Admin.GetArticle)
					r.Put("/{id}", d.Admin.UpdateArticle)
					r.Delete("/{id}", d.Admin.DeleteArticle)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Use(jsonBody)
				r.Get("/", d.Admin.ListCategories)
				r.Post("/", d.Admin.CreateCategory)
				r.Put("/{id}", d.Admin.UpdateCategory)
				r.Delete("/{id}", d.Admin.DeleteCategory)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Use(jsonBody)
				r.Get("/", d.Admin.ListTags)
				r.Post("/", d.Admin.CreateTag)
				r.Put("/{id}", d.Admin.UpdateTag)
				r.Delete("/{id}", d.Admin.DeleteTag)
			})
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	render.OK(w, map[string]string{"status": "ok"})
}
