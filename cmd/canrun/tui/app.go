package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateProbing AppState = iota
	StateReport
)

// Options configures the TUI application.
type Options struct {
	ProjectPath string
	Run         readiness.Options
	RunTimeout  time.Duration
	Verbose     bool
}

// Model is the main Bubble Tea model for the canrun TUI.
type Model struct {
	state       AppState
	probeModel  ProbeModel
	reportModel ReportModel
	options     Options

	// Run state
	ctx          context.Context
	cancel       context.CancelFunc
	runDone      bool
	runErr       error
	result       *readiness.Result
	progressChan chan types.Measurement

	// Window dimensions
	width  int
	height int
}

// NewModel creates a new TUI model with the given options.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateProbing,
		probeModel:   NewProbeModel(opts.ProjectPath),
		options:      opts,
		ctx:          ctx,
		cancel:       cancel,
		width:        80,
		height:       24,
		progressChan: make(chan types.Measurement, 16),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.probeModel.Init(),
		m.startRun(),
		m.listenForProgress(),
		m.tickUI(),
	)
}

// tickUIMsg triggers a UI refresh.
type tickUIMsg struct{}

// tickUI returns a command that periodically triggers UI updates.
func (m Model) tickUI() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tickUIMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.probeModel.width = msg.Width
		m.probeModel.height = msg.Height
		m.reportModel.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickUIMsg:
		// Keep the clock and progress bar moving while probes run
		if m.state == StateProbing && !m.runDone {
			return m, m.tickUI()
		}
		return m, nil

	case ProbeMsg:
		m.probeModel.SetMeasurement(types.Measurement(msg))
		// Keep listening for more probes
		return m, m.listenForProgress()

	case RunCompleteMsg:
		m.runDone = true
		m.runErr = msg.Err
		m.result = msg.Result
		m.probeModel.SetDone(msg.Err)

		if msg.Err == nil {
			// Transition to the report view
			m.state = StateReport
			m.reportModel = NewReportModel(msg.Result, m.options.ProjectPath, m.options.Verbose)
			m.reportModel.SetDimensions(m.width, m.height)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == StateProbing {
			var cmd tea.Cmd
			m.probeModel, cmd = m.probeModel.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	switch key {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	}

	// State-specific keys
	switch m.state {
	case StateProbing:
		if key == "q" || key == "esc" {
			m.cancel()
			return m, tea.Quit
		}

	case StateReport:
		switch key {
		case "q", "esc", "enter":
			return m, tea.Quit
		case "v":
			m.reportModel.ToggleVerbose()
		}
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	switch m.state {
	case StateProbing:
		return m.probeModel.View()
	case StateReport:
		return m.reportModel.View()
	}
	return ""
}

// startRun starts the readiness run.
func (m Model) startRun() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		ctx := m.ctx
		if m.options.RunTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.options.RunTimeout)
			defer cancel()
		}

		opts := m.options.Run
		opts.Probe.OnProbe = func(meas types.Measurement) {
			select {
			case progressChan <- meas:
			default:
				// Channel full, skip this update
			}
		}

		result, err := readiness.NewRunner(opts).Run(ctx)

		// Close progress channel when the run completes
		close(progressChan)

		if err != nil {
			return RunCompleteMsg{Err: err}
		}
		return RunCompleteMsg{Result: result}
	}
}

// listenForProgress returns a command that waits for probe updates.
func (m Model) listenForProgress() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		meas, ok := <-progressChan
		if !ok {
			// Channel closed, the run is done
			return nil
		}
		return ProbeMsg(meas)
	}
}

// Run starts the TUI application and returns the report from the
// completed run. A nil report with a nil error means the user quit
// before the run finished.
func Run(opts Options) (*types.Report, error) {
	model := NewModel(opts)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := final.(Model)
	if !ok || m.result == nil {
		return nil, m.runErr
	}

	report := m.result.Report
	return &report, nil
}
