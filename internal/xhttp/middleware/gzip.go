package middleware

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/garrettladley/medibook/internal/xhttp"
)

const (
	gzipMinSize     = 1024 // 1KB minimum before compression kicks in
	gzipEncoding    = "gzip"
	textEventStream = "text/event-stream"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

// gzipResponseWriter buffers until it has gzipMinSize bytes or the handler
// flushes, then commits to compressed or plain output for the rest of the
// response.
type gzipResponseWriter struct {
	http.ResponseWriter
	writer      *gzip.Writer
	buf         bytes.Buffer
	wroteHeader bool
	statusCode  int
	useGzip     bool
	decided     bool
}

var (
	_ http.ResponseWriter = (*gzipResponseWriter)(nil)
	_ http.Flusher        = (*gzipResponseWriter)(nil)
	_ io.Closer           = (*gzipResponseWriter)(nil)
)

func (g *gzipResponseWriter) WriteHeader(code int) {
	if g.wroteHeader {
		return
	}
	g.statusCode = code
	g.wroteHeader = true
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}

	if !g.decided {
		g.buf.Write(b)
		if g.buf.Len() < gzipMinSize {
			return len(b), nil
		}
		if err := g.decide(true); err != nil {
			return 0, err
		}
		return len(b), nil
	}

	if g.useGzip {
		n, err := g.writer.Write(b)
		if err != nil {
			return n, fmt.Errorf("failed to write gzip: %w", err)
		}
		return n, nil
	}
	n, err := g.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// decide sends the header and the buffered bytes. compress is a request;
// responses that are already encoded, streamed or bodiless go out plain.
func (g *gzipResponseWriter) decide(compress bool) error {
	g.decided = true
	g.useGzip = compress && g.compressible()

	if !g.useGzip {
		g.ResponseWriter.WriteHeader(g.statusCode)
		if _, err := g.ResponseWriter.Write(g.buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write uncompressed response: %w", err)
		}
		g.buf.Reset()
		return nil
	}

	g.ResponseWriter.Header().Set(xhttp.ContentEncoding, gzipEncoding)
	g.ResponseWriter.Header().Del(xhttp.ContentLength)
	g.ResponseWriter.WriteHeader(g.statusCode)

	g.writer = gzipWriterPool.Get().(*gzip.Writer)
	g.writer.Reset(g.ResponseWriter)

	if _, err := g.writer.Write(g.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write to gzip writer: %w", err)
	}
	g.buf.Reset()
	return nil
}

func (g *gzipResponseWriter) compressible() bool {
	h := g.ResponseWriter.Header()
	if h.Get(xhttp.ContentEncoding) != "" {
		return false
	}
	if strings.HasPrefix(h.Get(xhttp.ContentType), textEventStream) {
		return false
	}
	return g.statusCode != http.StatusNoContent && g.statusCode != http.StatusNotModified
}

func (g *gzipResponseWriter) Close() error {
	if !g.decided {
		return g.decide(g.buf.Len() >= gzipMinSize)
	}

	if g.useGzip && g.writer != nil {
		err := g.writer.Close()
		gzipWriterPool.Put(g.writer)
		g.writer = nil
		if err != nil {
			return fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}

	return nil
}

// Flush commits to plain output if the threshold has not been reached, so a
// handler that flushes early is streaming and must not be held back.
func (g *gzipResponseWriter) Flush() {
	if !g.decided {
		if !g.wroteHeader {
			g.WriteHeader(http.StatusOK)
		}
		_ = g.decide(false)
	}
	if g.useGzip && g.writer != nil {
		_ = g.writer.Flush()
	}
	if flusher, ok := g.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

// Gzip compresses responses of at least gzipMinSize bytes for clients that
// accept it. Event streams are passed through untouched.
func Gzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !clientAcceptsGzip(r) || wantsEventStream(r) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set(xhttp.Vary, xhttp.AcceptEncoding)

		gw := &gzipResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		defer gw.Close() //nolint:errcheck // best-effort flush on response completion

		next.ServeHTTP(gw, r)
	})
}

func clientAcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get(xhttp.AcceptEncoding), gzipEncoding)
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get(xhttp.Accept), textEventStream)
}
