package sse

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/garrettladley/medibook/internal/xhttp"
	"github.com/garrettladley/medibook/internal/xslog"
)

const streamPath = "/api/notifications/stream"

const (
	EventNotification = "notification"
	EventMessage      = "message"
	EventHeartbeat    = "heartbeat"
	EventConnected    = "connected"
	EventShutdown     = "shutdown"
)

const maxEventSize = 1 << 20

var ErrUnauthorized = errors.New("stream rejected credentials")

type Event struct {
	Type string
	Data []byte
}

// Handler receives the lifecycle of one connection. OnOpen fires once the
// server accepted the stream; OnNotification gets the raw payload of every
// notification event.
type Handler struct {
	OnOpen         func()
	OnNotification func(data []byte)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, tokenSource oauth2.TokenSource, sessionID string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// no timeout for SSE
		httpClient: xhttp.NewHTTPClient(
			xhttp.WithTokenSource(tokenSource),
			xhttp.WithSessionID(sessionID),
		),
		logger: logger,
	}
}

// Stream opens one SSE connection and dispatches events until the server
// closes it, the connection fails, or ctx is cancelled. It never reconnects.
// A clean close (including a server shutdown event) returns nil.
func (c *Client) Stream(ctx context.Context, handler Handler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+streamPath, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	xhttp.SetRequestHeaderAcceptEventStream(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if err := xhttp.CheckResponse(resp, http.StatusOK); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "SSE connection established")
	if handler.OnOpen != nil {
		handler.OnOpen()
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var (
		eventType string
		data      [][]byte
	)

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			// empty line signals end of event
			if len(data) > 0 {
				event := Event{Type: eventType, Data: bytes.Join(data, []byte("\n"))}
				if event.Type == "" {
					event.Type = EventMessage
				}
				if done := c.handleEvent(ctx, event, handler); done {
					return nil
				}
			}
			eventType = ""
			data = nil
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}
		if value, found := strings.CutPrefix(line, "event:"); found {
			eventType = strings.TrimSpace(value)
		} else if value, found := strings.CutPrefix(line, "data:"); found {
			data = append(data, []byte(strings.TrimPrefix(value, " ")))
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	return nil
}

// handleEvent reports whether the server asked the client to go away.
func (c *Client) handleEvent(ctx context.Context, event Event, handler Handler) bool {
	switch event.Type {
	case EventNotification, EventMessage:
		if handler.OnNotification != nil {
			handler.OnNotification(event.Data)
		}

	case EventHeartbeat:
		c.logger.DebugContext(ctx, "received heartbeat")

	case EventConnected:
		c.logger.DebugContext(ctx, "received connected event", xslog.Data(string(event.Data)))

	case EventShutdown:
		c.logger.InfoContext(ctx, "server is shutting down the stream", xslog.Data(string(event.Data)))
		return true

	default:
		c.logger.DebugContext(ctx, "received unknown event type", xslog.Type(event.Type))
	}
	return false
}
