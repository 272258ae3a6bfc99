package footer

import (
	"strings"

	"charm.land/lipgloss/v2"
)

type Footer struct {
	hint         string
	rightContent string
	width        int
	padding      int
}

// New lays out hint on the left and rightContent on the right of a line
// width cells wide.
func New(hint, rightContent string, width int) Footer {
	return Footer{
		hint:         hint,
		rightContent: rightContent,
		width:        width,
		padding:      2,
	}
}

func (f Footer) Render() string {
	leftContent := f.leftContent()

	leftWidth := lipgloss.Width(leftContent)
	rightWidth := lipgloss.Width(f.rightContent)
	spacerWidth := max(f.width-leftWidth-rightWidth-(f.padding*2), 0)

	return lipgloss.NewStyle().
		PaddingLeft(f.padding).
		PaddingRight(f.padding).
		Render(leftContent + strings.Repeat(" ", spacerWidth) + f.rightContent)
}
