package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

func TestNewProbeModel(t *testing.T) {
	m := NewProbeModel("/test/project")

	if m.projectPath != "/test/project" {
		t.Errorf("expected project path '/test/project', got %s", m.projectPath)
	}
	if len(m.measurements) != 0 {
		t.Errorf("expected no measurements initially, got %d", len(m.measurements))
	}
	if m.done {
		t.Error("expected done to be false initially")
	}
	if m.err != nil {
		t.Error("expected err to be nil initially")
	}
}

func TestProbeModelSetMeasurement(t *testing.T) {
	m := NewProbeModel("/test/project")

	m.SetMeasurement(types.Measurement{
		Kind:      types.KindRAM,
		Available: float64(16 * types.GiB),
		Total:     float64(32 * types.GiB),
	})

	meas, ok := m.measurements[types.KindRAM]
	if !ok {
		t.Fatal("expected ram measurement to be recorded")
	}
	if meas.Available != float64(16*types.GiB) {
		t.Errorf("expected Available %v, got %v", float64(16*types.GiB), meas.Available)
	}
}

func TestProbeModelSetDone(t *testing.T) {
	m := NewProbeModel("/test/project")

	// Test done without error
	m.SetDone(nil)
	if !m.done {
		t.Error("expected done to be true")
	}
	if m.err != nil {
		t.Error("expected err to be nil")
	}
}

func TestProbeModelSetDoneWithError(t *testing.T) {
	m := NewProbeModel("/test/project")

	err := &testError{"test error"}
	m.SetDone(err)
	if !m.done {
		t.Error("expected done to be true")
	}
	if m.err == nil {
		t.Error("expected err to be set")
	}
	if m.err.Error() != "test error" {
		t.Errorf("expected error message 'test error', got %s", m.err.Error())
	}
}

func TestProbeModelIsDone(t *testing.T) {
	m := NewProbeModel("/test/project")

	if m.IsDone() {
		t.Error("expected IsDone to be false initially")
	}

	m.SetDone(nil)

	if !m.IsDone() {
		t.Error("expected IsDone to be true after SetDone")
	}
}

func TestProbeModelError(t *testing.T) {
	m := NewProbeModel("/test/project")

	if m.Error() != nil {
		t.Error("expected Error to be nil initially")
	}

	err := &testError{"test error"}
	m.SetDone(err)

	if m.Error() == nil {
		t.Error("expected Error to be set after SetDone")
	}
}

func TestProbeModelView(t *testing.T) {
	m := NewProbeModel("/test/project")
	m.width = 80
	m.height = 24

	view := m.View()
	if view == "" {
		t.Error("expected non-empty view")
	}
	if !strings.Contains(view, "canrun") {
		t.Error("expected view to contain the app title")
	}
}

func TestProbeModelViewShowsMeasurements(t *testing.T) {
	m := NewProbeModel("/test/project")
	m.width = 100
	m.height = 30

	m.SetMeasurement(types.Measurement{
		Kind:      types.KindRAM,
		Available: float64(16 * types.GiB),
	})
	m.SetMeasurement(types.Measurement{
		Kind: types.KindGPUMemory,
		Err:  "nvidia-smi not found",
	})

	view := m.View()
	if !strings.Contains(view, "16 GiB") {
		t.Error("expected view to show the measured quantity")
	}
	if !strings.Contains(view, "nvidia-smi not found") {
		t.Error("expected view to show the probe error")
	}
	if !strings.Contains(view, "probing...") {
		t.Error("expected pending kinds to show as probing")
	}
}

func TestProbeModelViewError(t *testing.T) {
	m := NewProbeModel("/test/project")
	m.width = 80
	m.height = 24

	m.SetDone(&testError{"manifest busted"})

	view := m.View()
	if !strings.Contains(view, "manifest busted") {
		t.Error("expected view to show the run error")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{30, "0:30"},
		{60, "1:00"},
		{90, "1:30"},
		{120, "2:00"},
		{3600, "60:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			d := time.Duration(tt.seconds) * time.Second
			result := formatDuration(d)
			if result != tt.expected {
				t.Errorf("formatDuration(%d seconds) = %s, want %s", tt.seconds, result, tt.expected)
			}
		})
	}
}

// Helper type for testing errors
type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
