package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/canrun/pkg/canrun/manifest"
	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// notReadyResult builds a run result with one passing and one failing
// verdict.
func notReadyResult() *readiness.Result {
	return &readiness.Result{
		Report: types.Report{
			Verdicts: []types.Verdict{
				{
					Kind:      types.KindRAM,
					Status:    types.StatusOK,
					Available: float64(16 * types.GiB),
					Required:  float64(8 * types.GiB),
					Measured:  true,
				},
				{
					Kind:      types.KindGPUMemory,
					Status:    types.StatusFail,
					Available: 0,
					Required:  float64(8 * types.GiB),
					Measured:  true,
					Message:   "short by 8.0 GiB",
				},
			},
			Ready:      false,
			Suggestion: "Insufficient GPU memory: need 8.0 GiB more",
			Platform:   types.PlatformInfo{OS: "linux", Arch: "amd64"},
			Elapsed:    120 * time.Millisecond,
		},
		Measurements: map[types.ResourceKind]types.Measurement{
			types.KindRAM: {
				Kind:      types.KindRAM,
				Available: float64(16 * types.GiB),
				Detail:    "physical memory",
			},
		},
		Resolution: &manifest.Resolution{
			Requirements: map[types.ResourceKind]types.Requirement{
				types.KindGPUMemory: {
					Kind:     types.KindGPUMemory,
					Required: float64(8 * types.GiB),
					Source:   types.SourceInferred,
					Detail:   "ML frameworks: torch",
				},
			},
		},
	}
}

// readyResult builds a run result where every verdict passed.
func readyResult() *readiness.Result {
	return &readiness.Result{
		Report: types.Report{
			Verdicts: []types.Verdict{
				{
					Kind:      types.KindCPU,
					Status:    types.StatusOK,
					Available: 8,
					Required:  2,
					Measured:  true,
				},
			},
			Ready:    true,
			Platform: types.PlatformInfo{OS: "darwin", Arch: "arm64"},
			Elapsed:  80 * time.Millisecond,
		},
	}
}

func TestNewReportModel(t *testing.T) {
	m := NewReportModel(notReadyResult(), "/test/project", false)

	if m.projectPath != "/test/project" {
		t.Errorf("expected project path '/test/project', got %s", m.projectPath)
	}
	if m.verbose {
		t.Error("expected verbose to be false")
	}
	if m.result == nil {
		t.Fatal("expected result to be set")
	}
}

func TestReportModelViewNotReady(t *testing.T) {
	m := NewReportModel(notReadyResult(), "/test/project", false)
	m.width = 100
	m.height = 30

	view := m.View()
	if !strings.Contains(view, "RAM") {
		t.Error("expected view to contain the RAM verdict row")
	}
	if !strings.Contains(view, "GPU memory") {
		t.Error("expected view to contain the GPU memory verdict row")
	}
	if !strings.Contains(view, "short by 8.0 GiB") {
		t.Error("expected view to contain the failure message")
	}
	if !strings.Contains(view, "System ready for execution: NO") {
		t.Error("expected view to contain the overall verdict")
	}
	if !strings.Contains(view, "Insufficient GPU memory") {
		t.Error("expected view to contain the suggestion")
	}
}

func TestReportModelViewReady(t *testing.T) {
	m := NewReportModel(readyResult(), "/test/project", false)
	m.width = 100
	m.height = 30

	view := m.View()
	if !strings.Contains(view, "System ready for execution: YES") {
		t.Error("expected view to contain the overall verdict")
	}
	if strings.Contains(view, "Suggestion") {
		t.Error("ready report should not render a suggestion")
	}
}

func TestReportModelViewNilResult(t *testing.T) {
	var m ReportModel

	if view := m.View(); view != "" {
		t.Errorf("expected empty view without a result, got %q", view)
	}
}

func TestReportModelVerboseDetail(t *testing.T) {
	m := NewReportModel(notReadyResult(), "/test/project", true)
	m.width = 100
	m.height = 30

	view := m.View()
	if !strings.Contains(view, "physical memory") {
		t.Error("expected verbose view to contain the probe detail")
	}
	if !strings.Contains(view, "inferred: ML frameworks: torch") {
		t.Error("expected verbose view to contain the requirement detail")
	}
}

func TestReportModelToggleVerbose(t *testing.T) {
	m := NewReportModel(notReadyResult(), "/test/project", false)
	m.width = 100
	m.height = 30

	if strings.Contains(m.View(), "physical memory") {
		t.Error("expected no detail lines before toggling verbose")
	}

	m.ToggleVerbose()
	if !strings.Contains(m.View(), "physical memory") {
		t.Error("expected detail lines after toggling verbose")
	}

	m.ToggleVerbose()
	if m.verbose {
		t.Error("expected verbose to be false after second toggle")
	}
}

func TestReportModelWarnings(t *testing.T) {
	result := notReadyResult()
	result.Report.Warnings = []string{"GPU memory status unknown: nvidia-smi not found"}

	m := NewReportModel(result, "/test/project", false)
	m.width = 100
	m.height = 30

	view := m.View()
	if !strings.Contains(view, "Warnings:") {
		t.Error("expected view to contain the warnings header")
	}
	if !strings.Contains(view, "nvidia-smi not found") {
		t.Error("expected view to contain the warning line")
	}
}

func TestReportModelReport(t *testing.T) {
	m := NewReportModel(readyResult(), "/test/project", false)

	report := m.Report()
	if report == nil {
		t.Fatal("expected a report")
	}
	if !report.Ready {
		t.Error("expected report to be ready")
	}

	var empty ReportModel
	if empty.Report() != nil {
		t.Error("expected nil report without a result")
	}
}

func TestStatusGlyph(t *testing.T) {
	tests := []struct {
		status   types.Status
		expected string
	}{
		{types.StatusOK, "✓"},
		{types.StatusWarning, "!"},
		{types.StatusFail, "✗"},
		{types.StatusUnknown, "?"},
	}

	for _, tt := range tests {
		result := statusGlyph(tt.status)
		if !strings.Contains(result, tt.expected) {
			t.Errorf("statusGlyph(%v) = %q, want it to contain %q", tt.status, result, tt.expected)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name    string
		verdict types.Verdict
		want    []string
	}{
		{
			name: "measured with requirement",
			verdict: types.Verdict{
				Kind:      types.KindRAM,
				Available: float64(16 * types.GiB),
				Required:  float64(8 * types.GiB),
				Measured:  true,
			},
			want: []string{"16 GiB", "required", "8.0 GiB"},
		},
		{
			name: "measured without requirement",
			verdict: types.Verdict{
				Kind:      types.KindCPU,
				Available: 8,
				Measured:  true,
			},
			want: []string{"8 cores"},
		},
		{
			name: "requirement without measurement",
			verdict: types.Verdict{
				Kind:     types.KindGPUMemory,
				Required: float64(8 * types.GiB),
			},
			want: []string{"required", "8.0 GiB"},
		},
		{
			name:    "neither",
			verdict: types.Verdict{Kind: types.KindDisk},
			want:    []string{"not measured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := renderSummary(tt.verdict)
			for _, want := range tt.want {
				if !strings.Contains(result, want) {
					t.Errorf("renderSummary() = %q, want it to contain %q", result, want)
				}
			}
		})
	}
}
