package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the terminal styles for one colour scheme. The scheme follows
// the session's darkMode flag.
type Theme struct {
	Dark bool

	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Card     lipgloss.Style
	CardHead lipgloss.Style
	CardBody lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Quote    lipgloss.Style
	Error    lipgloss.Style
}

// NewTheme builds the light or dark theme
func NewTheme(dark bool) Theme {
	accent := lipgloss.Color("26")
	text := lipgloss.Color("235")
	muted := lipgloss.Color("244")
	if dark {
		accent = lipgloss.Color("205")
		text = lipgloss.Color("252")
		muted = lipgloss.Color("241")
	}

	return Theme{
		Dark:     dark,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtle:   lipgloss.NewStyle().Foreground(muted),
		Card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		CardHead: lipgloss.NewStyle().Foreground(muted),
		CardBody: lipgloss.NewStyle().Bold(true).Foreground(text),
		Tab:      lipgloss.NewStyle().Padding(0, 2).Foreground(muted),
		TabOn:    lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true).Foreground(accent),
		Quote:    lipgloss.NewStyle().Italic(true).Foreground(accent),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

// GlamourStyle is the glamour standard style matching the theme
func (t Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}
