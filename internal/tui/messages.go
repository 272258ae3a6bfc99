package tui

import "github.com/garrettladley/medibook/internal/xsync"

type StateMsg struct {
	State xsync.State
}

type SyncErrorMsg struct {
	Err error
}

type PollDoneMsg struct {
	Outcome xsync.PollOutcome
	Err     error
}

// streamClosedMsg means the synchronizer stopped publishing.
type streamClosedMsg struct{}
