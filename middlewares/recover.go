package middlewares

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover converts handler panics into 500 responses and logs the panic
// value with a stack trace. http.ErrAbortHandler is re-raised so the
// server's connection-abort semantics stay intact.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
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

				if log != nil {
					log.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
				}

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"status":500,"message":"internal error"}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
