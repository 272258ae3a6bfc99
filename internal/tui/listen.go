package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/medibook/internal/xsync"
)

// ListenStateCmd waits for the next state transition. Re-issue it after each
// StateMsg to keep listening.
func ListenStateCmd(states <-chan xsync.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-states
		if !ok {
			return streamClosedMsg{}
		}
		return StateMsg{State: st}
	}
}

// ListenErrorsCmd waits for the next reported sync error. Re-issue it after
// each SyncErrorMsg.
func ListenErrorsCmd(errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-errs
		if !ok {
			return streamClosedMsg{}
		}
		return SyncErrorMsg{Err: err}
	}
}

func PollCmd(ctx context.Context, inbox Inbox) tea.Cmd {
	return func() tea.Msg {
		outcome, err := inbox.Poll(ctx)
		return PollDoneMsg{Outcome: outcome, Err: err}
	}
}
