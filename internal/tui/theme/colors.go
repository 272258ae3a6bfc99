package theme

import "charm.land/lipgloss/v2"

var (
	ColorBlack = lipgloss.Color("#000000")
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorDim   = lipgloss.Color("#666666")
)

var (
	ColorInfo    = lipgloss.Color("#67AEE6")
	ColorSuccess = lipgloss.Color("#16EC06")
	ColorWarning = lipgloss.Color("#FFDE00")
	ColorError   = lipgloss.Color("#FF0026")
	ColorAccent  = lipgloss.Color("#00F19F") // cursor, unread marker
)

var (
	ColorBgDark  = lipgloss.Color("#101518")
	ColorBgLight = lipgloss.Color("#283339")
)
