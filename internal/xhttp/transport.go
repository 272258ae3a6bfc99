package xhttp

import (
	"fmt"
	"net/http"

	"github.com/garrettladley/medibook/internal/version"
)

type medibookTransport struct {
	base      http.RoundTripper
	sessionID string
}

var _ http.RoundTripper = (*medibookTransport)(nil)

func (t *medibookTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set(UserAgent, version.UserAgent())
	req.Header.Set(version.Header, version.Get())
	if t.sessionID != "" {
		SetRequestHeaderSessionID(req, t.sessionID)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}
