package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/logging"
)

// Auth error codes, in the same envelope as the API's other errors.
const (
	codeMissingKey = "AUTH001"
	codeInvalidKey = "AUTH002"
)

// APIKeyAuth returns middleware that checks the X-API-Key header of
// mutating requests against the configured keys. Reads always pass, as do
// all requests when RequireAPIKey is false.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	keys := make([][]byte, len(cfg.APIKeys))
	for i, k := range cfg.APIKeys {
		keys[i] = []byte(k)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			log := logging.FromContext(r.Context()).With(
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			key := r.Header.Get("X-API-Key")
			switch {
			case key == "":
				log.Warn("auth: missing API key")
				writeAuthError(w, http.StatusUnauthorized, "API key required", codeMissingKey)
			case !matchesAny([]byte(key), keys):
				log.Warn("auth: invalid API key")
				writeAuthError(w, http.StatusForbidden, "API key not recognised", codeInvalidKey)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// matchesAny compares key against every configured key in constant time,
// so the response time does not reveal which key (if any) matched.
func matchesAny(key []byte, keys [][]byte) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(key, k)
	}
	return match == 1
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": message,
		"action":  "Send a valid key in the X-API-Key header",
		"code":    code,
	})
}
