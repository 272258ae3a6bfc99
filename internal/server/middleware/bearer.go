package middleware

import (
	"errors"
	"net/http"

	"github.com/garrettladley/medibook/internal/apperr"
	"github.com/garrettladley/medibook/internal/service/token"
	"github.com/garrettladley/medibook/internal/xcontext"
	"github.com/garrettladley/medibook/internal/xhttp"
	"github.com/garrettladley/medibook/internal/xslog"
)

// BearerAuth validates bearer tokens and sets the verified user ID in context.
func BearerAuth(tokenService token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := xslog.FromContext(r.Context())

			userID, err := tokenService.ValidateAndGetUserID(r.Context(), r.Header.Get(xhttp.Authorization))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					xslog.RequestPath(r),
					xslog.ErrorGroup(err))

				switch {
				case errors.Is(err, token.ErrMissingToken):
					apperr.WriteError(w, apperr.Unauthorized("unauthorized", "missing Authorization header"))
				case errors.Is(err, token.ErrInvalidToken):
					apperr.WriteError(w, apperr.Unauthorized("unauthorized", "invalid or expired token"))
				default:
					apperr.WriteError(w, apperr.Internal("internal_error", "token validation failed", err))
				}
				return
			}

			ctx := xcontext.SetUserID(r.Context(), userID)
			ctx = xslog.WithAttrs(ctx, xslog.UserID(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
