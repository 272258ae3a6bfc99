package tui

import (
	"context"
	"log/slog"

	"github.com/garrettladley/medibook/internal/xsync"
)

// Inbox is the part of *xsync.Synchronizer the TUI drives.
type Inbox interface {
	Subscribe() (<-chan xsync.State, func())
	Errors() (<-chan error, func())
	Poll(ctx context.Context) (xsync.PollOutcome, error)
	MarkRead(id string)
	MarkAllRead()
	Delete(id string)
	ClearAll()
}

var _ Inbox = (*xsync.Synchronizer)(nil)

type Deps struct {
	Ctx    context.Context
	Logger *slog.Logger
	Inbox  Inbox
}
