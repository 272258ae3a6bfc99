package xhttp

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	go_json "github.com/goccy/go-json"
)

// GetRequestIP prefers the edge proxy's client header, then the first hop of
// X-Forwarded-For, then the socket address.
func GetRequestIP(r *http.Request) string {
	if ip := r.Header.Get(FlyClientIP); ip != "" {
		return stripPort(ip)
	}
	if xff := r.Header.Get(XForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return stripPort(strings.TrimSpace(first))
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(addr string) string {
	if ip, _, err := net.SplitHostPort(addr); err == nil {
		return ip
	}
	return addr
}

// DecodeJSON reads at most limit bytes of r's body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if err := go_json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}
