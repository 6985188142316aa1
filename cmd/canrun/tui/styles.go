// Package tui provides an interactive terminal user interface for the
// canrun readiness analyzer. It uses Charmbracelet's Bubble Tea, Lip
// Gloss, and Bubbles to drive the probing and report views.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Status colors track the verdict statuses; primary and accent
// carry the brand.
var (
	primaryColor = lipgloss.Color("#5F87FF")
	accentColor  = lipgloss.Color("#56C8D8")

	successColor = lipgloss.Color("#2EB872")
	warningColor = lipgloss.Color("#E8A33D")
	dangerColor  = lipgloss.Color("#E23E3E")

	mutedColor  = lipgloss.Color("#707070")
	subtleColor = lipgloss.Color("#4A4A4A")
	borderColor = lipgloss.Color("#3A3A3A")
)

// Containers.
var (
	outerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 2)

	dividerStyle = lipgloss.NewStyle().Foreground(borderColor)
)

// Text.
var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	kindStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	quantityStyle    = lipgloss.NewStyle().Foreground(accentColor)
	successTextStyle = lipgloss.NewStyle().Foreground(successColor)
	warningTextStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorTextStyle   = lipgloss.NewStyle().Foreground(dangerColor)
	mutedTextStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// Progress bar, stats and key hints.
var (
	progressFillStyle  = lipgloss.NewStyle().Foreground(successColor)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(subtleColor)

	statsLabelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	statsValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))

	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	keyDescStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// renderDivider draws a horizontal rule of the given width.
func renderDivider(width int) string {
	return dividerStyle.Render(repeatChar('─', width))
}

// repeatChar repeats a rune n times. Non-positive counts yield the
// empty string.
func repeatChar(char rune, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(char), n)
}

// truncatePath shortens a path to maxLen, keeping the tail where the
// interesting segments live.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-maxLen+3:]
}

// truncate shortens a string to maxLen, keeping the head.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// padRight pads a string with spaces to the target width.
func padRight(s string, width int) string {
	if pad := width - len(s); pad > 0 {
		return s + repeatChar(' ', pad)
	}
	return s
}

// center pads a string on both sides to the target width, biasing left
// when the padding is odd.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return repeatChar(' ', left) + s + repeatChar(' ', pad-left)
}
