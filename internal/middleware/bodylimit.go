package middleware

import (
	"net/http"

	"inkwell/internal/render"
)

// MaxBodySize rejects requests whose declared Content-Length exceeds
// limit with 413 and caps streamed bodies at limit bytes.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				render.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
