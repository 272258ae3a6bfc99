package xsync

import (
	"context"
	"time"

	"github.com/garrettladley/medibook/internal/xslog"
)

const pollKey = "poll"

type PollOutcome struct {
	Notifications int
	UnreadCount   int
	// Shared is set when the caller joined a poll another caller issued.
	Shared bool
	// Discarded is set when the response arrived after every caller waiting
	// on it was released and was not applied.
	Discarded bool
}

// Poll fetches the server snapshot and merges it. Concurrent callers share a
// single request. Failures leave the collection untouched and are also
// reported on the error stream.
func (s *Synchronizer) Poll(ctx context.Context) (PollOutcome, error) {
	return s.poll(ctx, nil)
}

// SchedulePolling polls immediately and then every interval until the
// handle is released.
func (s *Synchronizer) SchedulePolling(interval time.Duration) *Handle {
	if interval <= 0 {
		interval = s.opts.PollInterval
	}

	h := newHandle(s.baseCtx, s.untrack)
	if !s.track(h) {
		h.Release()
		h.finish()
		return h
	}

	go func() {
		defer h.finish()

		s.logger.DebugContext(h.ctx, "polling scheduled", xslog.Interval(interval))
		_, _ = s.poll(h.ctx, h)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.ctx.Done():
				return
			case <-ticker.C:
				_, _ = s.poll(h.ctx, h)
			}
		}
	}()

	return h
}

// pollWaiter is one caller blocked on the shared poll.
type pollWaiter struct {
	source *Handle
}

func (s *Synchronizer) poll(ctx context.Context, source *Handle) (PollOutcome, error) {
	w := &pollWaiter{source: source}
	s.mu.Lock()
	s.pollWaiters[w] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pollWaiters, w)
		s.mu.Unlock()
	}()

	ch := s.flight.DoChan(pollKey, func() (any, error) {
		return s.doPoll(source)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return PollOutcome{}, res.Err
		}
		outcome := res.Val.(PollOutcome)
		outcome.Shared = res.Shared
		return outcome, nil
	case <-ctx.Done():
		return PollOutcome{}, ctx.Err()
	}
}

// pollWantedLocked reports whether anyone can still take the poll result:
// the issuer or any waiter that is a manual caller or a live handle.
func (s *Synchronizer) pollWantedLocked(source *Handle) bool {
	if source == nil || !source.released() {
		return true
	}
	for w := range s.pollWaiters {
		if w.source == nil || !w.source.released() {
			return true
		}
	}
	return false
}

// doPoll runs inside the single-flight latch. The request is bound to the
// synchronizer's lifetime rather than to whichever caller issued it.
func (s *Synchronizer) doPoll(source *Handle) (PollOutcome, error) {
	if s.poller == nil {
		return PollOutcome{}, &SyncError{Kind: ErrPollFailed, Op: "poll", Err: ErrClosed}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return PollOutcome{}, ErrClosed
	}
	issuedAt := s.coll.Seq()
	s.syncing = true
	s.publishLocked()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.PollTimeout)
	defer cancel()

	start := time.Now()
	snapshot, err := s.poller.Poll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncing = false

	if err != nil {
		s.publishLocked()
		s.logger.WarnContext(ctx, "poll failed", xslog.Error(err), xslog.Duration(time.Since(start)))
		syncErr := &SyncError{Kind: ErrPollFailed, Op: "poll", Err: err}
		s.report(syncErr)
		return PollOutcome{}, syncErr
	}

	if s.closed || !s.pollWantedLocked(source) {
		s.publishLocked()
		s.logger.DebugContext(ctx, "discarding poll response from released source")
		return PollOutcome{Discarded: true}, nil
	}

	s.coll.ApplySnapshot(snapshot, issuedAt)
	s.persistLocked()
	s.publishLocked()

	s.logger.DebugContext(ctx, "poll merged",
		xslog.Count(s.coll.Len()),
		xslog.Unread(s.coll.UnreadCount()),
		xslog.Duration(time.Since(start)),
	)

	return PollOutcome{
		Notifications: s.coll.Len(),
		UnreadCount:   s.coll.UnreadCount(),
	}, nil
}
