// Package middleware provides reusable HTTP middleware for the Tabi-Navi API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for the given
// origins (scheme and host, no trailing slash). Item edits use PATCH, list
// totals travel in X-Total-Count, and X-Request-Id lets browser clients
// correlate a failure with the server log line.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"X-Total-Count", "X-Request-Id"},
		MaxAge:         300,
	})
	return c.Handler
}
