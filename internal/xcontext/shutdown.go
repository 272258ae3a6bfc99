package xcontext

import "context"

type shutdownSignalKey struct{}

// SetShutdownSignal records a channel that closes once the server begins
// shutting down, so handlers can tell a server shutdown from a client
// disconnect when their context ends.
func SetShutdownSignal(ctx context.Context, done <-chan struct{}) context.Context {
	return context.WithValue(ctx, shutdownSignalKey{}, done)
}

// IsShutdownInProgress reports whether the recorded shutdown signal has fired.
func IsShutdownInProgress(ctx context.Context) bool {
	done, ok := ctx.Value(shutdownSignalKey{}).(<-chan struct{})
	if !ok || done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}
