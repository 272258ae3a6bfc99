package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/xsync"
)

type fakeInbox struct {
	mu     sync.Mutex
	calls  []string
	states chan xsync.State
	errs   chan error
}

func newFakeInbox() *fakeInbox {
	return &fakeInbox{
		states: make(chan xsync.State, 4),
		errs:   make(chan error, 4),
	}
}

func (f *fakeInbox) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeInbox) Subscribe() (<-chan xsync.State, func()) { return f.states, func() {} }
func (f *fakeInbox) Errors() (<-chan error, func())          { return f.errs, func() {} }
func (f *fakeInbox) MarkRead(id string)                      { f.record("read " + id) }
func (f *fakeInbox) MarkAllRead()                            { f.record("read all") }
func (f *fakeInbox) Delete(id string)                        { f.record("delete " + id) }
func (f *fakeInbox) ClearAll()                               { f.record("clear") }

func (f *fakeInbox) Poll(context.Context) (xsync.PollOutcome, error) {
	f.record("poll")
	return xsync.PollOutcome{}, nil
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func inboxState(ids ...string) xsync.State {
	st := xsync.State{Live: xsync.LiveConnected}
	for i, id := range ids {
		st.Notifications = append(st.Notifications, notification.Notification{
			ID:        id,
			Kind:      notification.KindInfo,
			Title:     "Reminder " + id,
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
		})
		st.UnreadCount++
	}
	return st
}

func TestModelKeysDriveInbox(t *testing.T) {
	t.Parallel()

	inbox := newFakeInbox()
	m := New(Deps{Inbox: inbox})
	t.Cleanup(m.Close)

	m.Update(StateMsg{State: inboxState("a", "b", "c")})

	for _, k := range []string{"enter", "j", "down", "d", "k", "enter", "a", "c"} {
		m.Update(key(k))
	}

	_, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatal("refresh returned no command")
	}
	if msg, ok := cmd().(PollDoneMsg); !ok || msg.Err != nil {
		t.Errorf("refresh msg = %#v, want PollDoneMsg", msg)
	}

	want := []string{"read a", "delete c", "read b", "read all", "clear", "poll"}
	if diff := cmp.Diff(want, inbox.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModelCursorFollowsShrinkingInbox(t *testing.T) {
	t.Parallel()

	m := New(Deps{Inbox: newFakeInbox()})
	t.Cleanup(m.Close)

	m.Update(StateMsg{State: inboxState("a", "b", "c")})
	m.Update(key("G"))
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}

	m.Update(StateMsg{State: inboxState("a")})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", m.cursor)
	}

	m.Update(StateMsg{State: xsync.State{}})
	if _, ok := m.selectedID(); ok {
		t.Error("selectedID() on empty inbox reported a selection")
	}
}

func TestModelQuit(t *testing.T) {
	t.Parallel()

	m := New(Deps{Inbox: newFakeInbox()})
	t.Cleanup(m.Close)

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModelListensForStateAndErrors(t *testing.T) {
	t.Parallel()

	inbox := newFakeInbox()
	m := New(Deps{Inbox: inbox})
	t.Cleanup(m.Close)

	inbox.states <- inboxState("x")
	msg := ListenStateCmd(m.states)()
	if _, cmd := m.Update(msg); cmd == nil {
		t.Error("StateMsg did not re-arm the listener")
	}
	if len(m.state.Notifications) != 1 {
		t.Errorf("state has %d notifications, want 1", len(m.state.Notifications))
	}

	inbox.errs <- xsync.ErrChannelDisconnected
	m.Update(ListenErrorsCmd(m.errs)())
	if m.StatusView() == "" {
		t.Error("StatusView() empty after sync error")
	}

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.InboxView(10) == "" {
		t.Error("InboxView() rendered nothing")
	}
}
