// Package mcp exposes the readiness engine over the Model Context
// Protocol so AI clients can query machine capacity and project demands
// directly. Every tool call runs fresh probes; no state persists between
// calls.
package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
)

// Options configures the MCP server.
type Options struct {
	// Run holds the probe and resolve options used by tool calls. A tool
	// input path overrides the project root per call.
	Run readiness.Options

	// RunTimeout bounds a single readiness run triggered by a tool call.
	RunTimeout time.Duration

	// Version is reported to clients during initialization.
	Version string
}

// Server is the MCP server for canrun. It bridges AI clients with the
// probe set and the requirement resolver.
type Server struct {
	mcp    *mcp.Server
	opts   Options
	logger *logging.Logger
}

// NewServer creates an MCP server and registers the canrun tools.
func NewServer(opts Options) *Server {
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 15 * time.Second
	}

	s := &Server{
		opts:   opts,
		logger: logging.Get("mcp"),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "canrun",
			Version: opts.Version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_system_resources",
		Description: "Probe the machine's RAM, CPU, GPU memory, and disk capacity. Returns availability per resource along with platform information. Use this to learn what the current machine can offer before planning heavy work.",
	}, s.checkResourcesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_project_dependencies",
		Description: "List the packages a project declares in requirements.txt, package.json, and go.mod, keyed by ecosystem. Use this to understand what a project pulls in before running it.",
	}, s.analyzeDependenciesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "detect_heavy_requirements",
		Description: "Scan a project's dependencies for ML frameworks and large-model libraries that imply significant memory and GPU demands.",
	}, s.detectHeavyHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate_readiness_report",
		Description: "Probe the machine, resolve the project's resource requirements, and report whether the system is ready to run it. Returns the structured report plus a rendered text version.",
	}, s.readinessReportHandler)

	s.logger.Debug("tools registered", "count", 4)
}

// Serve runs the server over stdio until the context ends.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting", "version", s.opts.Version)

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp server stopped", "error", err)
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}

// runOptions returns the run options with the project root overridden
// when a tool call supplies one.
func (s *Server) runOptions(path string) readiness.Options {
	opts := s.opts.Run
	if path != "" {
		opts.Resolve.Root = path
		opts.Probe.ProjectPath = path
	}
	return opts
}
