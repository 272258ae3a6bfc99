package github

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garrettladley/medibook/internal/xhttp"
)

func TestLatestRelease(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/garrettladley/medibook/releases/latest":
			_, _ = w.Write([]byte(`{"tag_name":"v1.4.0","html_url":"https://example.com/r","published_at":"2026-09-01T00:00:00Z"}`))
		case "/repos/garrettladley/flaky/releases/latest":
			w.WriteHeader(http.StatusBadGateway)
		case "/repos/garrettladley/empty/releases/latest":
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name       string
		repo       string
		wantTag    string
		wantErr    error
		wantStatus int
	}{
		{name: "published", repo: Repo, wantTag: "v1.4.0"},
		{name: "repo without releases", repo: "missing", wantErr: ErrNoRelease},
		{name: "empty body", repo: "empty", wantErr: ErrNoRelease},
		{name: "upstream failure", repo: "flaky", wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithRepo(Owner, tt.repo))
			release, err := client.LatestRelease(t.Context())

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LatestRelease() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantStatus != 0:
				var statusErr *xhttp.StatusError
				if !errors.As(err, &statusErr) || statusErr.StatusCode != tt.wantStatus {
					t.Fatalf("LatestRelease() error = %v, want status %d", err, tt.wantStatus)
				}
			default:
				if err != nil {
					t.Fatalf("LatestRelease() error = %v", err)
				}
				if release.TagName != tt.wantTag {
					t.Errorf("TagName = %q, want %q", release.TagName, tt.wantTag)
				}
			}
		})
	}
}
