package mcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jamesainslie/canrun/pkg/canrun/manifest"
	"github.com/jamesainslie/canrun/pkg/canrun/output"
	"github.com/jamesainslie/canrun/pkg/canrun/probe"
	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// CheckResourcesInput defines the input schema for the
// check_system_resources tool (no parameters).
type CheckResourcesInput struct{}

// ResourceStatus describes one probed resource in tool output.
type ResourceStatus struct {
	Kind           string  `json:"kind"`
	Available      float64 `json:"available,omitempty"`
	AvailableHuman string  `json:"available_human,omitempty"`
	Total          float64 `json:"total,omitempty"`
	TotalHuman     string  `json:"total_human,omitempty"`
	Detail         string  `json:"detail,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// CheckResourcesOutput defines the output schema for the
// check_system_resources tool.
type CheckResourcesOutput struct {
	Platform  types.PlatformInfo `json:"platform"`
	Resources []ResourceStatus   `json:"resources"`
}

// AnalyzeDependenciesInput defines the input schema for the
// analyze_project_dependencies tool.
type AnalyzeDependenciesInput struct {
	Path string `json:"path,omitempty" jsonschema:"the project directory to analyze, default the server's configured root"`
}

// AnalyzeDependenciesOutput defines the output schema for the
// analyze_project_dependencies tool.
type AnalyzeDependenciesOutput struct {
	Path         string              `json:"path"`
	Dependencies map[string][]string `json:"dependencies"`
	Count        int                 `json:"count"`
}

// DetectHeavyInput defines the input schema for the
// detect_heavy_requirements tool.
type DetectHeavyInput struct {
	Path string `json:"path,omitempty" jsonschema:"the project directory to scan, default the server's configured root"`
}

// DetectHeavyOutput defines the output schema for the
// detect_heavy_requirements tool.
type DetectHeavyOutput struct {
	Heavy       bool     `json:"heavy"`
	Frameworks  []string `json:"frameworks,omitempty"`
	LargeModels []string `json:"large_models,omitempty"`
	Summary     string   `json:"summary"`
}

// ReadinessReportInput defines the input schema for the
// generate_readiness_report tool.
type ReadinessReportInput struct {
	Path    string `json:"path,omitempty" jsonschema:"the project directory to evaluate, default the server's configured root"`
	Verbose bool   `json:"verbose,omitempty" jsonschema:"include probe and requirement evidence in the rendered text"`
}

// ReadinessReportOutput defines the output schema for the
// generate_readiness_report tool.
type ReadinessReportOutput struct {
	Report types.Report `json:"report"`
	Text   string       `json:"text"`
}

// checkResourcesHandler probes the machine and reports per-resource
// availability. Failed probes appear with their error instead of being
// dropped, so clients always see every kind.
func (s *Server) checkResourcesHandler(ctx context.Context, _ *mcp.CallToolRequest, _ CheckResourcesInput) (
	*mcp.CallToolResult,
	CheckResourcesOutput,
	error,
) {
	s.logger.Debug("tool call", "tool", "check_system_resources")

	set := probe.NewSet(s.opts.Run.Probe)
	measurements := set.Run(ctx)

	out := CheckResourcesOutput{
		Platform:  probe.Platform(ctx),
		Resources: make([]ResourceStatus, 0, len(measurements)),
	}
	for _, kind := range types.Kinds() {
		m, ok := measurements[kind]
		if !ok {
			continue
		}
		rs := ResourceStatus{
			Kind:   string(kind),
			Detail: m.Detail,
			Error:  m.Err,
		}
		if m.Err == "" {
			rs.Available = m.Available
			rs.AvailableHuman = types.FormatQuantity(kind, m.Available)
			if m.Total > 0 {
				rs.Total = m.Total
				rs.TotalHuman = types.FormatQuantity(kind, m.Total)
			}
		}
		out.Resources = append(out.Resources, rs)
	}
	return nil, out, nil
}

// analyzeDependenciesHandler lists the packages the project declares,
// keyed by ecosystem.
func (s *Server) analyzeDependenciesHandler(_ context.Context, _ *mcp.CallToolRequest, input AnalyzeDependenciesInput) (
	*mcp.CallToolResult,
	AnalyzeDependenciesOutput,
	error,
) {
	root, err := s.projectDir(input.Path)
	if err != nil {
		return nil, AnalyzeDependenciesOutput{}, err
	}
	s.logger.Debug("tool call", "tool", "analyze_project_dependencies", "path", root)

	deps := manifest.Dependencies(root)
	count := 0
	for _, pkgs := range deps {
		count += len(pkgs)
	}

	return nil, AnalyzeDependenciesOutput{
		Path:         root,
		Dependencies: deps,
		Count:        count,
	}, nil
}

// detectHeavyHandler scans the project's dependency files for ML
// frameworks and large-model libraries.
func (s *Server) detectHeavyHandler(_ context.Context, _ *mcp.CallToolRequest, input DetectHeavyInput) (
	*mcp.CallToolResult,
	DetectHeavyOutput,
	error,
) {
	root, err := s.projectDir(input.Path)
	if err != nil {
		return nil, DetectHeavyOutput{}, err
	}
	s.logger.Debug("tool call", "tool", "detect_heavy_requirements", "path", root)

	ind := manifest.DetectIndicators(root)

	return nil, DetectHeavyOutput{
		Heavy:       ind.Heavy(),
		Frameworks:  ind.Frameworks,
		LargeModels: ind.LargeModels,
		Summary:     heavySummary(ind),
	}, nil
}

// readinessReportHandler runs the full readiness pipeline and returns the
// structured report alongside a rendered text version.
func (s *Server) readinessReportHandler(ctx context.Context, _ *mcp.CallToolRequest, input ReadinessReportInput) (
	*mcp.CallToolResult,
	ReadinessReportOutput,
	error,
) {
	root, err := s.projectDir(input.Path)
	if err != nil {
		return nil, ReadinessReportOutput{}, err
	}
	s.logger.Debug("tool call", "tool", "generate_readiness_report", "path", root)

	runCtx, cancel := context.WithTimeout(ctx, s.opts.RunTimeout)
	defer cancel()

	runner := readiness.NewRunner(s.runOptions(root))
	result, err := runner.Run(runCtx)
	if err != nil {
		return nil, ReadinessReportOutput{}, err
	}

	doc := output.NewDocument(root, result.Report, result.Measurements, requirementsOf(result.Resolution))
	doc.Verbose = input.Verbose
	if result.Resolution != nil {
		doc.ManifestPath = result.Resolution.ManifestPath
		doc.Dependencies = result.Resolution.Dependencies
	}

	formatter, err := output.Get("text")
	if err != nil {
		return nil, ReadinessReportOutput{}, err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, doc); err != nil {
		return nil, ReadinessReportOutput{}, err
	}

	return nil, ReadinessReportOutput{
		Report: result.Report,
		Text:   buf.String(),
	}, nil
}

// projectDir validates a tool-supplied project path, falling back to the
// server's configured root and finally the current directory.
func (s *Server) projectDir(path string) (string, error) {
	if path == "" {
		path = s.opts.Run.Resolve.Root
	}
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrProjectPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrProjectPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", types.ErrProjectPath, abs)
	}
	return abs, nil
}

// requirementsOf extracts the requirement map from a resolution that may
// be nil after a degraded run.
func requirementsOf(res *manifest.Resolution) map[types.ResourceKind]types.Requirement {
	if res == nil {
		return nil
	}
	return res.Requirements
}

// heavySummary renders a one-line interpretation of the indicators for
// AI clients, without committing to specific thresholds.
func heavySummary(ind manifest.Indicators) string {
	if !ind.Heavy() {
		return "no ML frameworks or large model libraries detected"
	}
	var parts []string
	if len(ind.Frameworks) > 0 {
		parts = append(parts, "ML frameworks present: "+strings.Join(ind.Frameworks, ", "))
	}
	if len(ind.LargeModels) > 0 {
		parts = append(parts, "large model libraries: "+strings.Join(ind.LargeModels, ", "))
	}
	return strings.Join(parts, "; ") + ". Expect elevated RAM and GPU memory demands."
}
