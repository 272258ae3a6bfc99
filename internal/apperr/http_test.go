package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/medibook/internal/xhttp"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   errorResponse
		wantRetry  string
		wantReason string
	}{
		{
			name:       "unauthorized",
			err:        Unauthorized("invalid_token", "token expired"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   errorResponse{Error: "invalid_token", Message: "token expired"},
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("lookup: %w", NotFound("not_found", "notification not found")),
			wantStatus: http.StatusNotFound,
			wantBody:   errorResponse{Error: "not_found", Message: "notification not found"},
		},
		{
			name:       "validation carries fields",
			err:        Validation("invalid_notification", "notification failed validation", map[string]string{"title": "too long"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: errorResponse{
				Error:   "invalid_notification",
				Message: "notification failed validation",
				Fields:  map[string]string{"title": "too long"},
			},
		},
		{
			name:       "rate limited",
			err:        TooManyRequests("rate_limited", "slow down", 1500*time.Millisecond, "user"),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   errorResponse{Error: "rate_limited", Message: "slow down"},
			wantRetry:  "2",
			wantReason: "user",
		},
		{
			name:       "unknown error hides its text",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   errorResponse{Error: "internal_error", Message: "an unexpected error occurred"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got errorResponse
			if err := go_json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if diff := cmp.Diff(tt.wantBody, got); diff != "" {
				t.Errorf("body (-want +got):\n%s", diff)
			}
			if got := rec.Header().Get(xhttp.RetryAfter); got != tt.wantRetry {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetry)
			}
			if got := rec.Header().Get(xhttp.XRateLimitReason); got != tt.wantReason {
				t.Errorf("X-RateLimit-Reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}
