package middleware

import (
	"net/http"
	"strings"

	"scriptdesk/internal/httputil"
)

// UserIDHeader carries the caller identity set by the upstream gateway
const UserIDHeader = "X-User-ID"

// Identity copies the gateway-provided user id into the request context.
// Requests under /api/ without one are rejected with 401; other paths
// (health, metrics) pass through.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				httputil.RespondError(w, http.StatusUnauthorized, "missing "+UserIDHeader+" header")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, httputil.WithUserID(r, userID))
	})
}
