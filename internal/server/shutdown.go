package server

import (
	"context"
	"time"
)

// ShutdownCoordinator lets long-lived requests, SSE streams in particular,
// notice a shutdown before the listener goes away.
type ShutdownCoordinator struct {
	baseCtx     context.Context
	cancel      context.CancelFunc
	gracePeriod time.Duration
}

// NewShutdownCoordinator returns a coordinator that waits gracePeriod between
// signalling shutdown and returning from InitiateShutdown.
func NewShutdownCoordinator(gracePeriod time.Duration) *ShutdownCoordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownCoordinator{
		baseCtx:     ctx,
		cancel:      cancel,
		gracePeriod: gracePeriod,
	}
}

// BaseContext is the parent of every request context.
func (sc *ShutdownCoordinator) BaseContext() context.Context {
	return sc.baseCtx
}

// Done closes when shutdown has been initiated.
func (sc *ShutdownCoordinator) Done() <-chan struct{} {
	return sc.baseCtx.Done()
}

// InitiateShutdown cancels the base context so streams can send their final
// event, then blocks for the grace period or until ctx is done.
func (sc *ShutdownCoordinator) InitiateShutdown(ctx context.Context) {
	sc.cancel()

	timer := time.NewTimer(sc.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
