package middleware

import (
	"net/http"

	"github.com/garrettladley/medibook/internal/xcontext"
)

// ShutdownContext attaches the server's shutdown signal to each request so
// long-lived handlers can tell a server shutdown from a client disconnect.
// A nil signal leaves requests untouched.
func ShutdownContext(shutdown <-chan struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if shutdown == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := xcontext.SetShutdownSignal(r.Context(), shutdown)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
