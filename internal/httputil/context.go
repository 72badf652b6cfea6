package httputil

import (
	"context"
	"net/http"
)

// Request-scoped values set by the middleware chain
type ctxKey int

const (
	userIDKey ctxKey = iota
	requestIDKey
)

// WithUserID returns r carrying the gateway-provided caller identity
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// GetUserID returns the caller identity, empty outside /api/ routes
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithRequestID returns r carrying the correlation id echoed in X-Request-ID
func WithRequestID(r *http.Request, requestID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))
}

// RequestID returns the correlation id of the request, empty when the
// RequestID middleware did not run
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
