package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// ReportModel represents the report phase of the TUI.
type ReportModel struct {
	result      *readiness.Result
	projectPath string
	verbose     bool
	width       int
	height      int
}

// NewReportModel creates a report model for a finished run.
func NewReportModel(result *readiness.Result, projectPath string, verbose bool) ReportModel {
	return ReportModel{
		result:      result,
		projectPath: projectPath,
		verbose:     verbose,
		width:       80,
		height:      24,
	}
}

// Init initializes the report model.
func (m ReportModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the report model.
func (m ReportModel) Update(msg tea.Msg) (ReportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// View renders the report model.
func (m ReportModel) View() string {
	if m.result == nil {
		return ""
	}

	var b strings.Builder

	// Calculate dimensions
	contentWidth := m.width - 4
	if contentWidth < 60 {
		contentWidth = 60
	}

	// Header
	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	// Help bar
	b.WriteString(m.renderHelpBar())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	// Verdict rows
	b.WriteString(m.renderVerdicts())

	// Warnings
	if warnings := m.result.Report.Warnings; len(warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderWarnings(warnings, contentWidth))
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(contentWidth))
	b.WriteString("\n")

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderHeader renders the header.
func (m ReportModel) renderHeader(width int) string {
	title := fmt.Sprintf("  canrun - %s", truncatePath(m.projectPath, width-12))

	return titleStyle.Render(title)
}

// renderHelpBar renders the help bar with key hints.
func (m ReportModel) renderHelpBar() string {
	hints := []struct {
		key  string
		desc string
	}{
		{"v", "Details"},
		{"q", "Quit"},
	}

	var parts []string
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.key+"]")+" "+keyDescStyle.Render(h.desc))
	}

	return "  " + strings.Join(parts, "  ")
}

// renderVerdicts renders one row per verdict, in report order.
func (m ReportModel) renderVerdicts() string {
	var b strings.Builder

	maxLabel := 0
	for _, v := range m.result.Report.Verdicts {
		if len(v.Kind.Label()) > maxLabel {
			maxLabel = len(v.Kind.Label())
		}
	}

	for _, v := range m.result.Report.Verdicts {
		label := kindStyle.Render(padRight(v.Kind.Label(), maxLabel))

		b.WriteString(fmt.Sprintf("  %s %s  %s", statusGlyph(v.Status), label, renderSummary(v)))
		if v.Message != "" {
			b.WriteString("  " + mutedTextStyle.Render(v.Message))
		}
		b.WriteString("\n")

		if m.verbose {
			if detail := m.verdictDetail(v.Kind); detail != "" {
				b.WriteString("      " + mutedTextStyle.Render(detail))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// verdictDetail surfaces probe and requirement context for a kind.
func (m ReportModel) verdictDetail(kind types.ResourceKind) string {
	var parts []string

	if meas, ok := m.result.Measurements[kind]; ok && meas.Detail != "" {
		parts = append(parts, meas.Detail)
	}
	if m.result.Resolution != nil {
		if req, ok := m.result.Resolution.Requirements[kind]; ok && req.Detail != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", req.Source, req.Detail))
		}
	}

	return strings.Join(parts, "; ")
}

// renderWarnings renders the warnings list.
func (m ReportModel) renderWarnings(warnings []string, width int) string {
	var b strings.Builder

	b.WriteString(warningTextStyle.Render("  Warnings:"))
	b.WriteString("\n")
	for _, w := range warnings {
		b.WriteString(warningTextStyle.Render("    • " + truncate(w, width-8)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFooter renders the overall verdict and run metadata.
func (m ReportModel) renderFooter(width int) string {
	report := m.result.Report

	var left string
	if report.Ready {
		left = successTextStyle.Bold(true).Render("  System ready for execution: YES")
	} else {
		left = errorTextStyle.Bold(true).Render("  System ready for execution: NO")
	}

	right := mutedTextStyle.Render(fmt.Sprintf("%s/%s  %d resources in %s",
		report.Platform.OS, report.Platform.Arch,
		len(report.Verdicts), report.Elapsed.Round(time.Millisecond)))

	spacing := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}

	out := left + strings.Repeat(" ", spacing) + right
	if !report.Ready && report.Suggestion != "" {
		out += "\n" + mutedTextStyle.Render("  "+truncate(report.Suggestion, width-4))
	}

	return out
}

// ToggleVerbose flips the per-verdict detail lines.
func (m *ReportModel) ToggleVerbose() {
	m.verbose = !m.verbose
}

// SetDimensions updates the width and height.
func (m *ReportModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// Report returns the report behind the view.
func (m ReportModel) Report() *types.Report {
	if m.result == nil {
		return nil
	}
	return &m.result.Report
}

// statusGlyph returns the styled row marker for a verdict status.
func statusGlyph(s types.Status) string {
	switch s {
	case types.StatusOK:
		return successTextStyle.Render("✓")
	case types.StatusWarning:
		return warningTextStyle.Render("!")
	case types.StatusFail:
		return errorTextStyle.Render("✗")
	default:
		return mutedTextStyle.Render("?")
	}
}

// renderSummary renders the quantity portion of a verdict row.
func renderSummary(v types.Verdict) string {
	switch {
	case v.Measured && v.Required > 0:
		return quantityStyle.Render(types.FormatQuantity(v.Kind, v.Available)) +
			mutedTextStyle.Render(" / required ") +
			quantityStyle.Render(types.FormatQuantity(v.Kind, v.Required))
	case v.Measured:
		return quantityStyle.Render(types.FormatQuantity(v.Kind, v.Available))
	case v.Required > 0:
		return mutedTextStyle.Render("required ") +
			quantityStyle.Render(types.FormatQuantity(v.Kind, v.Required))
	default:
		return mutedTextStyle.Render("not measured")
	}
}
