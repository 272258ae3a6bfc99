package xsync

import (
	"github.com/garrettladley/medibook/internal/client/sse"
	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/xslog"
)

type LiveState uint8

const (
	LiveDisconnected LiveState = iota
	LiveConnecting
	LiveConnected
	LiveReconnectPending
)

func (l LiveState) String() string {
	switch l {
	case LiveDisconnected:
		return "disconnected"
	case LiveConnecting:
		return "connecting"
	case LiveConnected:
		return "connected"
	case LiveReconnectPending:
		return "reconnect_pending"
	default:
		return "unknown"
	}
}

// ConnectLiveChannel opens the push channel and keeps it open until the
// handle is released. After a failure exactly one reconnect timer is armed
// for the configured delay. Opening a new channel releases the previous one.
func (s *Synchronizer) ConnectLiveChannel() *Handle {
	h := newHandle(s.baseCtx, s.untrack)
	if s.live == nil || !s.track(h) {
		h.Release()
		h.finish()
		return h
	}

	s.mu.Lock()
	previous := s.liveHandle
	s.liveHandle = h
	s.mu.Unlock()
	if previous != nil {
		previous.Release()
	}

	go s.runLive(h)
	return h
}

func (s *Synchronizer) runLive(h *Handle) {
	defer h.finish()
	defer s.liveStopped(h)

	handler := sse.Handler{
		OnOpen:         func() { s.liveOpened(h) },
		OnNotification: func(data []byte) { s.livePushed(h, data) },
	}

	for {
		if !s.setLive(h, LiveConnecting, false) {
			return
		}

		err := s.live.Stream(h.ctx, handler)
		if h.released() {
			return
		}

		if !s.liveFailed(h, err) {
			return
		}

		if !s.sleep(h.ctx, s.opts.ReconnectDelay) {
			return
		}
	}
}

// setLive moves h's state machine if h is still the active channel.
func (s *Synchronizer) setLive(h *Handle, state LiveState, connected bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveHandle != h || h.released() {
		return false
	}
	if s.liveState == state && s.connected == connected {
		return true
	}
	s.liveState = state
	s.connected = connected
	s.logger.DebugContext(h.ctx, "live channel state", xslog.State(state.String()))
	s.publishLocked()
	return true
}

func (s *Synchronizer) liveOpened(h *Handle) {
	if s.setLive(h, LiveConnected, true) {
		s.logger.InfoContext(h.ctx, "live channel connected")
	}
}

// liveFailed arms the reconnect. It reports false when h is no longer the
// active channel.
func (s *Synchronizer) liveFailed(h *Handle, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveHandle != h || h.released() {
		return false
	}

	s.connected = false
	s.liveState = LiveReconnectPending
	s.publishLocked()

	syncErr := &SyncError{Kind: ErrChannelDisconnected, Op: "live", Err: err}
	s.logger.WarnContext(h.ctx, "live channel dropped, reconnecting",
		xslog.ErrorGroup(syncErr),
		xslog.Backoff(s.opts.ReconnectDelay),
	)
	s.report(syncErr)
	return true
}

func (s *Synchronizer) liveStopped(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveHandle != h {
		return
	}
	s.liveHandle = nil
	s.connected = false
	s.liveState = LiveDisconnected
	s.publishLocked()
}

// livePushed upserts one pushed notification. Events from a released or
// superseded channel are dropped.
func (s *Synchronizer) livePushed(h *Handle, data []byte) {
	n, err := notification.Decode(data, s.opts.Now())
	if err != nil {
		s.logger.WarnContext(h.ctx, "failed to parse notification",
			xslog.Error(err),
			xslog.Data(string(data)),
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.liveHandle != h || h.released() {
		return
	}
	if !s.coll.Upsert(n) {
		s.logger.DebugContext(h.ctx, "ignoring push for deleted notification", xslog.NotificationID(n.ID))
		return
	}
	s.persistLocked()
	s.publishLocked()
}
