//go:build !release

package footer

import (
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/medibook/internal/tui/theme"
	"github.com/garrettladley/medibook/internal/version"
)

var devVersionStyle = lipgloss.NewStyle().Foreground(theme.ColorDim)

func (f Footer) leftContent() string {
	v := devVersionStyle.Render(version.Get())
	if f.hint == "" {
		return v
	}
	return v + "  " + f.hint
}
