package middleware

import (
	"net/http"

	"github.com/garrettladley/medibook/internal/xcontext"
	"github.com/garrettladley/medibook/internal/xhttp"
	"github.com/garrettladley/medibook/internal/xslog"
)

// ClientSessionID tags the request and its logger with the client's session
// header. Must run AFTER Logger.
func ClientSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := xhttp.GetRequestHeaderSessionID(r)
		if sessionID == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := xcontext.SetSessionID(r.Context(), sessionID)
		ctx = xslog.WithAttrs(ctx, xslog.SessionID(sessionID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
