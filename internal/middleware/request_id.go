package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"scriptdesk/internal/httputil"
)

// maxRequestIDLength bounds ids accepted from clients
const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID when it looks sane and generates
// one otherwise. The id is echoed on the response and stored in the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(httputil.RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		w.Header().Set(httputil.RequestIDHeader, id)
		next.ServeHTTP(w, httputil.WithRequestID(r, id))
	})
}
