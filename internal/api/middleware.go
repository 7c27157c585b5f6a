// Package api implements the REST surface using chi.
package api

import (
	"crypto/subtle"
	"net/http"
)

// KeyHeader is the request header carrying the API key.
const KeyHeader = "X-Notes-Key"

// AuthMiddleware returns middleware that validates the X-Notes-Key
// header. If enabled is false all requests pass through (local dev).
func AuthMiddleware(enabled bool, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(KeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
