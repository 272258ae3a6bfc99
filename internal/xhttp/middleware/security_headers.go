package middleware

import (
	"net/http"

	"github.com/garrettladley/medibook/internal/xhttp"
)

// SecurityHeaders hardens every response. Inbox contents are patient data,
// so responses default to no-store; handlers that stream override it.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(xhttp.XContentTypeOpts, "nosniff")
		h.Set(xhttp.XFrameOpts, "DENY")
		h.Set(xhttp.ReferrerPolicy, "no-referrer")
		h.Set(xhttp.ContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		h.Set(xhttp.CacheControl, "no-store")
		if r.TLS != nil {
			h.Set(xhttp.StrictTransportSecurity, "max-age=63072000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
