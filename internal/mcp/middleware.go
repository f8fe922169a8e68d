package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyMiddleware rejects requests that do not carry apiKey in the X-API-Key
// header, a bearer token or the api_key query parameter.
func APIKeyMiddleware(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := providedKey(r)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="davquery"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func providedKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return token
	}
	return r.URL.Query().Get("api_key")
}
