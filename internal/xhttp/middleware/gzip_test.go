package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garrettladley/medibook/internal/xhttp"
)

func TestGzip(t *testing.T) {
	t.Parallel()

	large := strings.Repeat("x", 2000)

	tests := []struct {
		name            string
		acceptEncoding  string
		accept          string
		contentType     string
		contentEncoding string
		status          int
		body            string
		wantGzip        bool
		wantVary        bool
	}{
		{name: "small response stays plain", acceptEncoding: "gzip", body: "small", wantVary: true},
		{name: "large response compressed", acceptEncoding: "gzip", body: large, wantGzip: true, wantVary: true},
		{name: "threshold is inclusive", acceptEncoding: "gzip", body: strings.Repeat("y", gzipMinSize), wantGzip: true, wantVary: true},
		{name: "client without gzip", acceptEncoding: "deflate, br", body: large},
		{name: "no accept-encoding", body: large},
		{name: "event stream request", acceptEncoding: "gzip", accept: textEventStream, body: large},
		{
			name:           "event stream response",
			acceptEncoding: "gzip",
			contentType:    textEventStream,
			body:           large,
			wantVary:       true,
		},
		{
			name:            "already encoded",
			acceptEncoding:  "gzip",
			contentEncoding: "br",
			body:            large,
			wantVary:        true,
		},
		{
			name:           "status preserved when compressed",
			acceptEncoding: "gzip",
			status:         http.StatusCreated,
			body:           large,
			wantGzip:       true,
			wantVary:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set(xhttp.ContentType, tt.contentType)
				}
				if tt.contentEncoding != "" {
					w.Header().Set(xhttp.ContentEncoding, tt.contentEncoding)
				}
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte(tt.body))
			})

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/api/notifications", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set(xhttp.AcceptEncoding, tt.acceptEncoding)
			}
			if tt.accept != "" {
				req.Header.Set(xhttp.Accept, tt.accept)
			}

			rec := httptest.NewRecorder()
			Gzip(handler).ServeHTTP(rec, req)

			resp := rec.Result()
			defer resp.Body.Close() //nolint:errcheck

			wantStatus := tt.status
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			if resp.StatusCode != wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, wantStatus)
			}

			if got := resp.Header.Get(xhttp.Vary) == xhttp.AcceptEncoding; got != tt.wantVary {
				t.Errorf("Vary = %q, wantVary %v", resp.Header.Get(xhttp.Vary), tt.wantVary)
			}

			gotEncoding := resp.Header.Get(xhttp.ContentEncoding)
			switch {
			case tt.wantGzip && gotEncoding != gzipEncoding:
				t.Errorf("Content-Encoding = %q, want gzip", gotEncoding)
			case !tt.wantGzip && gotEncoding != tt.contentEncoding:
				t.Errorf("Content-Encoding = %q, want %q", gotEncoding, tt.contentEncoding)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("failed to read response body: %v", err)
			}
			if tt.wantGzip {
				if body, err = decompressGzip(body); err != nil {
					t.Fatalf("failed to decompress: %v", err)
				}
			}
			if string(body) != tt.body {
				t.Errorf("body length = %d, want %d", len(body), len(tt.body))
			}
		})
	}
}

func TestGzipFlush(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		first    string
		second   string
		wantGzip bool
	}{
		// past the threshold the encoder is already running; flushing keeps it
		{name: "flush after threshold", first: strings.Repeat("x", 2000), second: strings.Repeat("y", 500), wantGzip: true},
		// an early flush means the handler is streaming
		{name: "flush before threshold", first: "event: heartbeat\n\n", second: strings.Repeat("y", 2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.first))
				if err := http.NewResponseController(w).Flush(); err != nil {
					t.Errorf("Flush() error = %v", err)
				}
				_, _ = w.Write([]byte(tt.second))
			})

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/api/notifications", nil)
			req.Header.Set(xhttp.AcceptEncoding, "gzip")

			rec := httptest.NewRecorder()
			Gzip(handler).ServeHTTP(rec, req)

			if !rec.Flushed {
				t.Error("flush did not reach the underlying writer")
			}

			body := rec.Body.Bytes()
			if got := rec.Header().Get(xhttp.ContentEncoding) == gzipEncoding; got != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", got, tt.wantGzip)
			}
			if tt.wantGzip {
				var err error
				if body, err = decompressGzip(body); err != nil {
					t.Fatalf("failed to decompress: %v", err)
				}
			}
			if want := tt.first + tt.second; string(body) != want {
				t.Errorf("body length = %d, want %d", len(body), len(want))
			}
		})
	}
}

func decompressGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close() //nolint:errcheck

	return io.ReadAll(reader)
}
