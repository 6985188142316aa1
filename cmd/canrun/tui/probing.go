package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// ProbeModel represents the probing phase of the TUI.
type ProbeModel struct {
	measurements map[types.ResourceKind]types.Measurement
	spinner      spinner.Model
	startTime    time.Time
	width        int
	height       int
	projectPath  string
	done         bool
	err          error
}

// ProbeMsg is sent when a probe finishes measuring its resource.
type ProbeMsg types.Measurement

// RunCompleteMsg is sent when the readiness run is complete.
type RunCompleteMsg struct {
	Result *readiness.Result
	Err    error
}

// NewProbeModel creates a new probing model.
func NewProbeModel(projectPath string) ProbeModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ProbeModel{
		measurements: make(map[types.ResourceKind]types.Measurement),
		spinner:      s,
		startTime:    time.Now(),
		width:        80,
		height:       24,
		projectPath:  projectPath,
	}
}

// Init initializes the probing model.
func (m ProbeModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the probing model.
func (m ProbeModel) Update(msg tea.Msg) (ProbeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ProbeMsg:
		m.SetMeasurement(types.Measurement(msg))
		return m, nil

	case RunCompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the probing model.
func (m ProbeModel) View() string {
	var b strings.Builder

	// Calculate content width (accounting for border padding)
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	// Add top margin for visual spacing
	b.WriteString("\n")

	// Header
	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	// Probing status
	if m.done {
		if m.err != nil {
			b.WriteString(errorTextStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		} else {
			b.WriteString(successTextStyle.Render("  Probes complete!"))
		}
	} else {
		b.WriteString(fmt.Sprintf("  %s Checking: %s",
			m.spinner.View(),
			truncatePath(m.projectPath, contentWidth-20)))
	}
	b.WriteString("\n\n")

	// One row per resource kind
	b.WriteString(m.renderProbeRows(contentWidth))
	b.WriteString("\n")

	// Progress bar
	b.WriteString(m.renderProgressBar(contentWidth))
	b.WriteString("\n\n")

	// Stats boxes
	b.WriteString(m.renderStats(contentWidth))
	b.WriteString("\n")

	// Build content and calculate padding needed to fill screen
	content := b.String()
	contentLines := strings.Count(content, "\n") + 1

	// Account for outer box border (2 lines: top and bottom)
	availableLines := m.height - 2
	if availableLines > contentLines {
		padding := availableLines - contentLines
		content += strings.Repeat("\n", padding)
	}

	// Wrap in outer box with full height
	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// renderHeader renders the header section.
func (m ProbeModel) renderHeader(width int) string {
	title := titleStyle.Render("  canrun")
	hint := mutedTextStyle.Render("[Ctrl+C to stop]")

	// Calculate spacing
	spacing := width - lipgloss.Width(title) - lipgloss.Width(hint)
	if spacing < 1 {
		spacing = 1
	}

	return title + strings.Repeat(" ", spacing) + hint
}

// renderProbeRows renders one status line per resource kind, in
// canonical order. Kinds without a measurement yet show as pending.
func (m ProbeModel) renderProbeRows(width int) string {
	var b strings.Builder

	maxLabel := 0
	for _, k := range types.Kinds() {
		if len(k.Label()) > maxLabel {
			maxLabel = len(k.Label())
		}
	}

	for _, k := range types.Kinds() {
		label := kindStyle.Render(padRight(k.Label(), maxLabel))

		meas, ok := m.measurements[k]
		switch {
		case !ok:
			b.WriteString(fmt.Sprintf("  %s %s  %s",
				mutedTextStyle.Render("·"), label, mutedTextStyle.Render("probing...")))
		case meas.OK():
			quantity := types.FormatQuantity(k, meas.Available)
			if meas.Total > 0 {
				quantity += " of " + types.FormatQuantity(k, meas.Total)
			}
			b.WriteString(fmt.Sprintf("  %s %s  %s",
				successTextStyle.Render("✓"), label, quantityStyle.Render(quantity)))
		default:
			b.WriteString(fmt.Sprintf("  %s %s  %s",
				errorTextStyle.Render("✗"), label,
				errorTextStyle.Render(truncate(meas.Err, width-maxLabel-8))))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderProgressBar renders the probe completion bar. The probe count is
// known upfront, so the bar is determinate.
func (m ProbeModel) renderProgressBar(width int) string {
	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}

	total := len(types.Kinds())
	filled := barWidth * len(m.measurements) / total
	if m.done {
		filled = barWidth
	}

	var bar strings.Builder
	bar.WriteString("  ")
	for i := range barWidth {
		if i < filled {
			bar.WriteString(progressFillStyle.Render("█"))
		} else {
			bar.WriteString(progressEmptyStyle.Render("░"))
		}
	}

	return bar.String()
}

// renderStats renders the statistics boxes.
func (m ProbeModel) renderStats(totalWidth int) string {
	// Calculate box width (3 boxes with spacing)
	boxWidth := (totalWidth - 8) / 3
	if boxWidth < 10 {
		boxWidth = 10
	}

	failed := 0
	for _, meas := range m.measurements {
		if !meas.OK() {
			failed++
		}
	}

	probesVal := fmt.Sprintf("%d/%d", len(m.measurements), len(types.Kinds()))
	failedVal := fmt.Sprintf("%d", failed)
	elapsedVal := formatDuration(time.Since(m.startTime))

	probesBox := m.renderStatBox("Probes", probesVal, boxWidth)
	failedBox := m.renderStatBox("Failed", failedVal, boxWidth)
	elapsedBox := m.renderStatBox("Time", elapsedVal, boxWidth)

	// Join horizontally
	return lipgloss.JoinHorizontal(lipgloss.Top,
		"  ", probesBox, " ", failedBox, " ", elapsedBox)
}

// renderStatBox renders a single stat box.
func (m ProbeModel) renderStatBox(label, value string, width int) string {
	labelStr := statsLabelStyle.Render(label)
	valueStr := statsValueStyle.Render(value)

	content := lipgloss.JoinVertical(lipgloss.Center,
		center(labelStr, width-4),
		center(valueStr, width-4))

	return statsBoxStyle.Width(width).Render(content)
}

// formatDuration formats a duration as M:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

// SetMeasurement records a finished probe.
func (m *ProbeModel) SetMeasurement(meas types.Measurement) {
	m.measurements[meas.Kind] = meas
}

// SetDone marks the run as complete.
func (m *ProbeModel) SetDone(err error) {
	m.done = true
	m.err = err
}

// IsDone returns true if the run is complete.
func (m ProbeModel) IsDone() bool {
	return m.done
}

// Error returns any error from the run.
func (m ProbeModel) Error() error {
	return m.err
}
