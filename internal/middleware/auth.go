package middleware

import (
	"net/http"

	"github.com/attendai/attendai/internal/models"
	"github.com/rs/zerolog/log"
)

var publicPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/metrics": true,
}

// Auth accepts requests carrying one of apiKeys in headerName or the
// api_key cookie.
func Auth(apiKeys []string, headerName string) func(http.Handler) http.Handler {
	keySet := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keySet[k] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerName)
			if key == "" {
				if c, err := r.Cookie("api_key"); err == nil {
					key = c.Value
				}
			}

			if key == "" {
				reject(w, r, http.StatusUnauthorized, "API key required")
				return
			}
			if !keySet[key] {
				reject(w, r, http.StatusForbidden, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, code int, reason string) {
	log.Warn().
		Str("request_id", GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Int("status", code).
		Msg("api request rejected: " + reason)
	models.WriteError(w, code, reason)
}
