package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/medibook/internal/notification"
)

type Theme struct {
	background color.Color
	foreground color.Color
	base       lipgloss.Style
}

func New() Theme {
	var t Theme

	t.background = ColorBgDark
	t.foreground = ColorWhite
	t.base = lipgloss.NewStyle().Foreground(t.foreground)

	return t
}

func (t Theme) Base() lipgloss.Style {
	return t.base
}

func (t Theme) Dim() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorDim)
}

func (t Theme) Selected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.foreground).Background(ColorBgLight).Bold(true)
}

func (t Theme) Background() color.Color {
	return t.background
}

func (t Theme) Foreground() color.Color {
	return t.foreground
}

// KindColor maps a notification kind to its badge color.
func KindColor(k notification.Kind) color.Color {
	switch k {
	case notification.KindSuccess:
		return ColorSuccess
	case notification.KindWarning:
		return ColorWarning
	case notification.KindError:
		return ColorError
	default:
		return ColorInfo
	}
}
