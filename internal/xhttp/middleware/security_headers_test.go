package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garrettladley/medibook/internal/xhttp"
)

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tls       bool
		handler   http.HandlerFunc
		wantCache string
		wantHSTS  bool
	}{
		{
			name:      "json response is not cached",
			handler:   func(w http.ResponseWriter, _ *http.Request) { xhttp.WriteOK(w, map[string]int{"unread_count": 1}) },
			wantCache: "no-store",
		},
		{
			name:      "event stream overrides cache control",
			handler:   func(w http.ResponseWriter, _ *http.Request) { xhttp.SetHeadersEventStream(w) },
			wantCache: "no-cache",
		},
		{
			name:      "hsts over tls",
			tls:       true,
			handler:   func(w http.ResponseWriter, _ *http.Request) { xhttp.WriteNoContent(w) },
			wantCache: "no-store",
			wantHSTS:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/api/notifications", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			rec := httptest.NewRecorder()
			SecurityHeaders(tt.handler).ServeHTTP(rec, req)

			h := rec.Result().Header
			if got := h.Get(xhttp.XContentTypeOpts); got != "nosniff" {
				t.Errorf("%s = %q, want nosniff", xhttp.XContentTypeOpts, got)
			}
			if got := h.Get(xhttp.CacheControl); got != tt.wantCache {
				t.Errorf("%s = %q, want %q", xhttp.CacheControl, got, tt.wantCache)
			}
			if got := h.Get(xhttp.StrictTransportSecurity) != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}
