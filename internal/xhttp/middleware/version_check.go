package middleware

import (
	"net/http"

	"github.com/garrettladley/medibook/internal/apperr"
	"github.com/garrettladley/medibook/internal/version"
	"github.com/garrettladley/medibook/internal/xslog"
)

// VersionCheck rejects clients whose major version differs from the server's
// with 426 Upgrade Required.
func VersionCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientVersion := r.Header.Get(version.Header)
		if clientVersion == "" {
			clientVersion = "unknown"
		}

		if verr := version.CheckCompatibility(clientVersion); verr != nil {
			xslog.FromContext(r.Context()).WarnContext(
				r.Context(),
				"client version incompatible",
				xslog.ClientVersion(verr.ClientVersion),
				xslog.Version(),
				xslog.RequestPath(r),
			)
			apperr.WriteError(w, apperr.UpgradeRequired("incompatible_version", verr.Error()))
			return
		}

		next.ServeHTTP(w, r)
	})
}
