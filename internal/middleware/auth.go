package middleware

import (
	"net/http"

	"agrolog/groundstation/internal/db/repositories"
)

// AuthMiddleware gates the API behind an API key. The key arrives in the
// X-API-Key header and is checked against the configured static key first,
// then against the keys table when a repository is available.
func AuthMiddleware(staticKey string, keysRepo *repositories.KeysRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				http.Error(w, "Unauthorized. Missing API Key", http.StatusUnauthorized)
				return
			}

			if staticKey != "" && apiKey == staticKey {
				next.ServeHTTP(w, r)
				return
			}

			if keysRepo != nil {
				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err == nil && keyRes.Status {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
		})
	}
}
