package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"survivor-pool-go/logging"
)

// AdminTokenHeader carries the shared secret on trigger requests
const AdminTokenHeader = "X-Admin-Token"

// AdminAuth guards the trigger surface with a shared-secret token. The token
// must match exactly; a missing or wrong token is rejected with 401 before
// any handler runs.
func AdminAuth(token string) func(http.Handler) http.Handler {
	logger := logging.WithPrefix("AdminAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(AdminTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.Warnf("Rejected %s %s: bad or missing admin token", r.Method, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "invalid or missing admin token",
					"kind":  "auth",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
