package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/medibook/internal/apperr"
	"github.com/garrettladley/medibook/internal/service/notification"
	"github.com/garrettladley/medibook/internal/xcontext"
	"github.com/garrettladley/medibook/internal/xhttp"
	"github.com/garrettladley/medibook/internal/xslog"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	sseWriteTimeout          = 45 * time.Second
)

const (
	eventConnected    = "connected"
	eventNotification = "notification"
	eventHeartbeat    = "heartbeat"
	eventShutdown     = "shutdown"
)

type SSE struct {
	service   notification.Service
	heartbeat time.Duration
}

func NewSSE(service notification.Service, heartbeat time.Duration) *SSE {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &SSE{
		service:   service,
		heartbeat: heartbeat,
	}
}

// HandleStream handles GET /api/notifications/stream. Each added notification
// is sent as one "notification" event.
func (h *SSE) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	userID, ok := xcontext.GetUserID(ctx)
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("unauthorized", "missing user context"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.WarnContext(ctx, "SSE: flusher not supported")
		apperr.WriteError(w, apperr.Internal("streaming_unsupported", "streaming unsupported", nil))
		return
	}

	notifCh, unsubscribe, err := h.service.Subscribe(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to subscribe to notifications", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal("internal_error", "failed to subscribe", err))
		return
	}
	defer unsubscribe()

	xhttp.SetHeadersEventStream(w)
	w.WriteHeader(http.StatusOK)

	logger.InfoContext(ctx, "SSE connection established")

	rc := http.NewResponseController(w)

	connected := map[string]any{
		"user_id": userID,
		"time":    time.Now().Format(time.RFC3339),
	}
	if sessionID, ok := xcontext.GetSessionID(ctx); ok {
		connected["session_id"] = sessionID
	}
	if err := writeSSEEvent(rc, w, flusher, eventConnected, connected); err != nil {
		logger.ErrorContext(ctx, "failed to send connected event", xslog.Error(err))
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			if xcontext.IsShutdownInProgress(ctx) {
				logger.InfoContext(ctx, "SSE graceful shutdown initiated")

				// best effort: tell the client to reconnect elsewhere
				_ = writeSSEEvent(rc, w, flusher, eventShutdown, map[string]string{
					"reason": "server-restart",
					"time":   time.Now().Format(time.RFC3339),
				})
				return
			}
			logger.InfoContext(ctx, "SSE connection closed by client")
			return

		case n, ok := <-notifCh:
			if !ok {
				logger.InfoContext(ctx, "notification channel closed")
				return
			}

			if err := writeSSEEvent(rc, w, flusher, eventNotification, n); err != nil {
				logger.ErrorContext(ctx, "failed to send notification event",
					xslog.NotificationID(n.ID),
					xslog.Error(err),
				)
				return
			}

		case t := <-heartbeat.C:
			if err := writeSSEEvent(rc, w, flusher, eventHeartbeat, map[string]string{
				"time": t.Format(time.RFC3339),
			}); err != nil {
				logger.ErrorContext(ctx, "failed to send heartbeat", xslog.Error(err))
				return
			}
		}
	}
}

func writeSSEEvent(rc *http.ResponseController, w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	// extend write deadline before each write (ignore if not supported)
	if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	jsonData, err := go_json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}
