package middleware

import (
	"net/http"

	"github.com/garrettladley/medibook/internal/apperr"
	"github.com/garrettladley/medibook/internal/storage"
	"github.com/garrettladley/medibook/internal/xcontext"
	"github.com/garrettladley/medibook/internal/xhttp"
	"github.com/garrettladley/medibook/internal/xslog"
)

// RateLimit limits requests per authenticated user, falling back to the
// client IP for anonymous routes.
func RateLimit(limiter storage.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := xslog.FromContext(r.Context())

			key, reason := "ip:"+xhttp.GetRequestIP(r), "ip_rate_limit"
			if userID, ok := xcontext.GetUserID(r.Context()); ok {
				key, reason = "user:"+userID, "user_rate_limit"
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.ErrorContext(r.Context(), "rate limit check failed",
					xslog.ErrorGroup(err),
					xslog.RequestIP(r),
				)
				apperr.WriteError(w, apperr.ServiceUnavailable("unavailable", "rate limit check failed"))
				return
			}

			if !result.Allowed {
				apperr.WriteError(w, apperr.TooManyRequests("rate_limited", "too many requests", result.RetryAfter, reason))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
