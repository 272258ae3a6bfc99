package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/tui/theme"
)

const (
	unreadMarker = "●"
	readMarker   = " "
	timeLayout   = "Jan 02 15:04"
)

func (m *Model) HeaderView() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorAccent).Render("medibook")
	count := m.theme.Dim().Render(fmt.Sprintf("%d unread · %d total",
		m.state.UnreadCount, len(m.state.Notifications)))
	return lipgloss.NewStyle().Padding(1, 2, 0, 2).Render(title + "  " + count)
}

// InboxView renders at most height rows, scrolled so the cursor stays visible.
func (m *Model) InboxView(height int) string {
	items := m.state.Notifications
	if len(items) == 0 {
		return lipgloss.NewStyle().PaddingLeft(2).Render(m.theme.Dim().Render("No notifications."))
	}

	height = max(height, 1)
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(items))

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(items[i], i == m.cursor))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderRow(n notification.Notification, selected bool) string {
	marker := readMarker
	if !n.Read {
		marker = lipgloss.NewStyle().Foreground(theme.ColorAccent).Render(unreadMarker)
	}

	kind := lipgloss.NewStyle().
		Foreground(theme.KindColor(n.Kind)).
		Width(8).
		Render(string(n.Kind))

	text := n.Title
	if text == "" {
		text = n.Body
	} else if n.Body != "" {
		text += m.theme.Dim().Render(" · " + n.Body)
	}

	when := m.theme.Dim().Render(n.CreatedAt.In(time.Local).Format(timeLayout))

	row := fmt.Sprintf(" %s %s %s  %s", marker, kind, when, text)
	if m.viewportWidth > 0 {
		row = lipgloss.NewStyle().MaxWidth(m.viewportWidth - 2).Render(row)
	}

	if selected {
		return m.theme.Selected().Render(">" + row)
	}
	return " " + row
}
