package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/medibook/internal/tui/components/footer"
	"github.com/garrettladley/medibook/internal/tui/components/live"
	"github.com/garrettladley/medibook/internal/tui/theme"
	"github.com/garrettladley/medibook/internal/xsync"
)

var _ tea.Model = (*Model)(nil)

const keyHint = "j/k move · enter read · a read all · d delete · c clear · r refresh · q quit"

type Model struct {
	ready          bool
	viewportWidth  int
	viewportHeight int
	theme          theme.Theme
	deps           Deps

	state   xsync.State
	cursor  int
	lastErr error

	states      <-chan xsync.State
	errs        <-chan error
	unsubscribe []func()
}

func New(deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	states, stopStates := deps.Inbox.Subscribe()
	errs, stopErrs := deps.Inbox.Errors()

	return Model{
		theme:       theme.New(),
		deps:        deps,
		states:      states,
		errs:        errs,
		unsubscribe: []func(){stopStates, stopErrs},
	}
}

// Close stops listening to the synchronizer.
func (m *Model) Close() {
	for _, stop := range m.unsubscribe {
		stop()
	}
	m.unsubscribe = nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		ListenStateCmd(m.states),
		ListenErrorsCmd(m.errs),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m.ready = true

	case tea.KeyPressMsg:
		return m, m.handleKey(msg.String())

	case StateMsg:
		m.state = msg.State
		m.clampCursor()
		return m, ListenStateCmd(m.states)

	case SyncErrorMsg:
		m.lastErr = msg.Err
		m.deps.Logger.DebugContext(m.deps.Ctx, "sync error", slog.String("error", msg.Err.Error()))
		return m, ListenErrorsCmd(m.errs)

	case PollDoneMsg:
		if msg.Err == nil {
			m.lastErr = nil
		}
	}

	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit

	case "j", "down":
		m.cursor++
		m.clampCursor()

	case "k", "up":
		m.cursor--
		m.clampCursor()

	case "g", "home":
		m.cursor = 0

	case "G", "end":
		m.cursor = len(m.state.Notifications) - 1
		m.clampCursor()

	case "enter", "space":
		if id, ok := m.selectedID(); ok {
			m.deps.Inbox.MarkRead(id)
		}

	case "a":
		m.deps.Inbox.MarkAllRead()

	case "d", "delete":
		if id, ok := m.selectedID(); ok {
			m.deps.Inbox.Delete(id)
		}

	case "c":
		m.deps.Inbox.ClearAll()

	case "r":
		return PollCmd(m.deps.Ctx, m.deps.Inbox)
	}
	return nil
}

func (m *Model) selectedID() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Notifications) {
		return "", false
	}
	return m.state.Notifications[m.cursor].ID, true
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, len(m.state.Notifications)-1)
	m.cursor = max(m.cursor, 0)
}

func (m *Model) View() tea.View {
	view := tea.NewView("")
	view.AltScreen = true
	view.BackgroundColor = m.theme.Background()

	if !m.ready {
		return view
	}

	indicator := live.Indicator{State: m.state.Live, Syncing: m.state.Syncing}
	bottom := footer.New(keyHint, indicator.Render(), m.viewportWidth).Render()

	status := m.StatusView()
	listHeight := max(m.viewportHeight-lipgloss.Height(bottom)-lipgloss.Height(status)-1, 1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.HeaderView(),
		lipgloss.NewStyle().Height(listHeight).Render(m.InboxView(listHeight-1)),
		status,
		bottom,
	)

	view.SetContent(content)
	return view
}

// StatusView shows the most recent sync problem, if any.
func (m *Model) StatusView() string {
	if m.lastErr == nil {
		return ""
	}
	msg := m.lastErr.Error()
	if errors.Is(m.lastErr, xsync.ErrChannelDisconnected) {
		msg = "live updates paused, retrying"
	}
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(theme.ColorWarning).
		Render(msg)
}
