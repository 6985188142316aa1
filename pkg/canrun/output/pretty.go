package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// PrettyFormatter renders the report with colors and styling using
// lipgloss. It produces output suitable for interactive terminals.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, d *Document) error {
	w.WriteString(f.formatHeader(d))
	w.WriteString("\n")

	w.WriteString(f.formatVerdicts(d))

	if len(d.Report.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(d.Report.Warnings))
	}

	w.WriteString(f.formatFooter(d))
	w.WriteString("\n")
	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(d *Document) string {
	var lines []string

	projectLabel := LabelStyle.Render("Project:")
	projectValue := ValueStyle.Render(d.ProjectPath)
	lines = append(lines, fmt.Sprintf("%s %s", projectLabel, projectValue))

	var infoParts []string

	p := d.Report.Platform
	platformLabel := LabelStyle.Render("Platform:")
	platformValue := ValueStyle.Render(p.OS + "/" + p.Arch)
	infoParts = append(infoParts, fmt.Sprintf("%s %s", platformLabel, platformValue))

	checkedLabel := LabelStyle.Render("Checked:")
	checkedValue := ValueStyle.Render(fmt.Sprintf("%d resources in %s",
		len(d.Report.Verdicts), d.Report.Elapsed.Round(time.Millisecond)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", checkedLabel, checkedValue))

	if d.ManifestPath != "" {
		infoParts = append(infoParts, MutedStyle.Render("manifest: declared"))
	} else {
		infoParts = append(infoParts, MutedStyle.Render("manifest: inferred"))
	}

	lines = append(lines, strings.Join(infoParts, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatVerdicts builds the aligned verdict rows.
func (f *PrettyFormatter) formatVerdicts(d *Document) string {
	var sb strings.Builder

	maxLabel := 0
	for _, v := range d.Report.Verdicts {
		if len(v.Kind.Label()) > maxLabel {
			maxLabel = len(v.Kind.Label())
		}
	}

	for _, v := range d.Report.Verdicts {
		label := KindStyle.Render(padRight(v.Kind.Label(), maxLabel))
		summary := statusStyle(v.Status).Render(verdictSummary(v))

		sb.WriteString(fmt.Sprintf("  %s %s  %s", statusGlyph(v.Status), label, summary))
		if v.Message != "" {
			sb.WriteString("  " + MutedStyle.Render(v.Message))
		}
		sb.WriteString("\n")

		if d.Verbose {
			if detail := verdictDetail(d, v.Kind); detail != "" {
				sb.WriteString("     " + MutedStyle.Render(detail) + "\n")
			}
		}
	}
	return sb.String()
}

// verdictDetail surfaces probe or requirement context for a kind in
// verbose mode.
func verdictDetail(d *Document, kind types.ResourceKind) string {
	var parts []string
	for _, m := range d.Probes {
		if m.Kind == kind && m.Detail != "" {
			parts = append(parts, m.Detail)
		}
	}
	for _, req := range d.Requirements {
		if req.Kind == kind && req.Detail != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", req.Source, req.Detail))
		}
	}
	return strings.Join(parts, "; ")
}

// formatWarnings builds the styled warnings list.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder
	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")
	for _, w := range warnings {
		sb.WriteString("  " + WarningStyle.Render("• "+w) + "\n")
	}
	return sb.String()
}

// formatFooter builds the footer box with the overall verdict.
func (f *PrettyFormatter) formatFooter(d *Document) string {
	var lines []string

	if d.Report.Ready {
		lines = append(lines, SuccessStyle.Bold(true).Render("System ready for execution: YES"))
	} else {
		lines = append(lines, ErrorStyle.Bold(true).Render("System ready for execution: NO"))
		if d.Report.Suggestion != "" {
			lines = append(lines, ValueStyle.Render(d.Report.Suggestion))
		}
	}

	return FooterBox.Render(strings.Join(lines, "\n"))
}

// statusStyle maps a verdict status to its text style.
func statusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusOK:
		return SuccessStyle
	case types.StatusWarning:
		return WarningStyle
	case types.StatusFail:
		return ErrorStyle
	default:
		return MutedStyle
	}
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
