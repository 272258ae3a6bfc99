package middleware

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/medibook/internal/version"
	"github.com/garrettladley/medibook/internal/xcontext"
	"github.com/garrettladley/medibook/internal/xslog"
)

// Logger injects an enriched logger into request context.
// Must run AFTER RequestID middleware.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := xslog.WithLogger(r.Context(), base)

			attrs := make([]slog.Attr, 0, 2)
			if id, ok := xcontext.GetRequestID(ctx); ok {
				attrs = append(attrs, xslog.RequestID(id))
			}
			if v := r.Header.Get(version.Header); v != "" {
				attrs = append(attrs, xslog.ClientVersion(v))
			}

			next.ServeHTTP(w, r.WithContext(xslog.WithAttrs(ctx, attrs...)))
		})
	}
}
