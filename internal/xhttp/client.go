package xhttp

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

type ClientOption func(*clientOptions)

type clientOptions struct {
	timeout     time.Duration
	tokenSource oauth2.TokenSource
	sessionID   string
	base        http.RoundTripper
}

func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.timeout = d }
}

// WithTokenSource authorizes every request with a bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(o *clientOptions) { o.tokenSource = ts }
}

// WithSessionID tags every request with the client session header.
func WithSessionID(id string) ClientOption {
	return func(o *clientOptions) { o.sessionID = id }
}

// WithBaseTransport replaces http.DefaultTransport underneath the medibook
// headers.
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.base = rt }
}

func NewHTTPClient(opts ...ClientOption) *http.Client {
	o := clientOptions{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	var rt http.RoundTripper = &medibookTransport{base: o.base, sessionID: o.sessionID}
	if o.tokenSource != nil {
		rt = &oauth2.Transport{Source: o.tokenSource, Base: rt}
	}
	return &http.Client{Transport: rt, Timeout: o.timeout}
}
