package live

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/medibook/internal/tui/theme"
	"github.com/garrettladley/medibook/internal/xsync"
)

const statusDot = "●"

// Indicator shows the live channel state and whether a poll is in flight.
type Indicator struct {
	State   xsync.LiveState
	Syncing bool
}

func (i Indicator) Render() string {
	label, c := i.describe()
	text := statusDot + " " + label
	if i.Syncing {
		text += " · syncing"
	}
	return lipgloss.NewStyle().Foreground(c).Render(text)
}

func (i Indicator) describe() (string, color.Color) {
	switch i.State {
	case xsync.LiveConnected:
		return "live", theme.ColorSuccess
	case xsync.LiveConnecting:
		return "connecting...", theme.ColorBgLight
	case xsync.LiveReconnectPending:
		return "reconnecting", theme.ColorWarning
	default:
		return "offline", theme.ColorError
	}
}
