package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyAuth creates a middleware that validates API key authentication.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check X-API-Key header
			key := r.Header.Get("X-API-Key")
			if key == "" {
				// Also check Authorization header with Bearer scheme
				auth := r.Header.Get("Authorization")
				if len(auth) > 7 && auth[:7] == "Bearer " {
					key = auth[7:]
				}
			}
			if key == "" {
				// Also check query parameter (for quick curl checks)
				key = r.URL.Query().Get("key")
			}

			if key == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"missing API key"}`))
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid API key"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
