package xsync

import (
	"errors"
	"strings"
)

var (
	// ErrCacheUnavailable means the local snapshot could not be read or
	// written. The synchronizer carries on with what it has in memory.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrPollFailed means a poll did not produce a snapshot. The next
	// scheduled tick retries.
	ErrPollFailed = errors.New("poll failed")

	// ErrChannelDisconnected means the live channel dropped or could not be
	// opened. A reconnect is scheduled.
	ErrChannelDisconnected = errors.New("live channel disconnected")

	// ErrMutationNotifyFailed means the server was not told about a local
	// change. The next poll reconciles.
	ErrMutationNotifyFailed = errors.New("mutation notify failed")

	ErrClosed = errors.New("synchronizer closed")
)

// SyncError is what the error stream carries. It matches both its Kind and
// its cause with errors.Is.
type SyncError struct {
	Kind error
	Op   string
	ID   string
	Err  error
}

func (e *SyncError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.ID != "" {
		b.WriteString(" ")
		b.WriteString(e.ID)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SyncError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
