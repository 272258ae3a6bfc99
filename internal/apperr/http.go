package apperr

import (
	"errors"
	"net/http"

	"github.com/garrettladley/medibook/internal/xhttp"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteError renders err as {"error","message"}. Anything that is not an
// *Error or *RateLimitError becomes a 500 without leaking its text.
func WriteError(w http.ResponseWriter, err error) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		xhttp.SetHeaderRetryAfter(w, rlErr.RetryAfter)
		if rlErr.Reason != "" {
			w.Header().Set(xhttp.XRateLimitReason, rlErr.Reason)
		}
		xhttp.WriteJSON(w, rlErr.StatusCode, errorResponse{
			Error:   rlErr.Code,
			Message: rlErr.Message,
		})
		return
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("internal_error", "an unexpected error occurred", err)
	}

	xhttp.WriteJSON(w, appErr.StatusCode, errorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}
