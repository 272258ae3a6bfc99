package xhttp

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	FlyClientIP      = "Fly-Client-IP"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	ReferrerPolicy   = "Referrer-Policy"

	ContentSecurityPolicy   = "Content-Security-Policy"
	StrictTransportSecurity = "Strict-Transport-Security"

	XSessionID       = "X-Session-ID"
	XRateLimitReason = "X-RateLimit-Reason"
)

const (
	ContentType   = "Content-Type"
	Accept        = "Accept"
	Authorization = "Authorization"
	CacheControl  = "Cache-Control"
	UserAgent     = "User-Agent"

	ContentEncoding = "Content-Encoding"
	ContentLength   = "Content-Length"
	AcceptEncoding  = "Accept-Encoding"
	Vary            = "Vary"
	RetryAfter      = "Retry-After"
)

const (
	applicationJSON = "application/json"
	textEventStream = "text/event-stream"
)

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	const headerName = "X-Request-ID"
	w.Header().Set(headerName, requestID)
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	w.Header().Set(ContentType, applicationJSON)
}

// SetHeaderRetryAfter writes d rounded up to whole seconds, at least one.
func SetHeaderRetryAfter(w http.ResponseWriter, d time.Duration) {
	seconds := max(int(math.Ceil(d.Seconds())), 1)
	w.Header().Set(RetryAfter, strconv.Itoa(seconds))
}

// SetHeadersEventStream prepares a response for server-sent events.
func SetHeadersEventStream(w http.ResponseWriter) {
	w.Header().Set(ContentType, textEventStream)
	w.Header().Set(CacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func SetRequestHeaderAcceptJSON(r *http.Request) {
	r.Header.Set(Accept, applicationJSON)
}

func SetRequestHeaderAcceptEventStream(r *http.Request) {
	r.Header.Set(Accept, textEventStream)
	r.Header.Set(CacheControl, "no-cache")
}

func SetRequestHeaderSessionID(r *http.Request, sessionID string) {
	r.Header.Set(XSessionID, sessionID)
}

func GetRequestHeaderSessionID(r *http.Request) string {
	return r.Header.Get(XSessionID)
}
