package xsync

import (
	"context"
	"sync"
)

// Handle scopes a background source (the polling timer or the live
// channel). Release stops the source; nothing it produced after release is
// applied.
type Handle struct {
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	release func(*Handle)
}

func newHandle(parent context.Context, release func(*Handle)) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		release: release,
	}
}

// Release is idempotent and does not wait for the source to wind down; use
// Done for that.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.cancel()
		if h.release != nil {
			h.release(h)
		}
	})
}

// Done is closed once the source's goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) released() bool {
	return h.ctx.Err() != nil
}

func (h *Handle) finish() {
	close(h.done)
}
