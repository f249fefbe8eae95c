package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns a middleware that lets the listed origins call the API
// with credentials. Each origin must be scheme + host, no trailing slash.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", CSRFHeaderName},
		AllowCredentials: true,
	})
	return c.Handler
}
