package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"scriptdesk/internal/httputil"
	"scriptdesk/internal/metrics"
)

// Recovery turns a handler panic into a 500 problem response. It sits outside
// Logging, so the panic is logged here with the request id and the stack.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				metrics.PanicsTotal.Inc()
				logger.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", httputil.RequestID(r.Context()),
					"stack", string(debug.Stack()),
				)

				problem := httputil.NewProblem(http.StatusInternalServerError, "internal server error")
				problem.Instance = r.URL.Path
				httputil.RespondProblem(w, problem)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
