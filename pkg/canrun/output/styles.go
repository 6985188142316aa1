package output

import "github.com/charmbracelet/lipgloss"

// ANSI 256 palette for the pretty formatter. The first three track the
// verdict statuses; the rest is chrome.
const (
	colorOK      = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorFail    = lipgloss.Color("196")

	colorAccent = lipgloss.Color("75")
	colorDim    = lipgloss.Color("245")
	colorText   = lipgloss.Color("255")
)

var (
	// HeaderBox frames the run metadata at the top of the report.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox frames the overall readiness verdict.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			MarginTop(1)

	// KindStyle renders resource kind names in verdict rows.
	KindStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)

	// LabelStyle and ValueStyle render metadata pairs such as
	// "Project: /path".
	LabelStyle = lipgloss.NewStyle().Foreground(colorDim)
	ValueStyle = lipgloss.NewStyle().Foreground(colorText)

	// SuccessStyle, WarningStyle and ErrorStyle color verdict text by
	// status.
	SuccessStyle = lipgloss.NewStyle().Foreground(colorOK)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorFail)

	// MutedStyle renders secondary detail.
	MutedStyle = lipgloss.NewStyle().Foreground(colorDim)
)
