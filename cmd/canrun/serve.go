package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/canrun/pkg/canrun/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Run the MCP server over stdio",
	Long: `Run canrun as a Model Context Protocol server on stdin/stdout.

AI clients can call four tools: check_system_resources,
analyze_project_dependencies, detect_heavy_requirements, and
generate_readiness_report. The optional path argument sets the default
project directory for tool calls that do not name one.

Add to an MCP client configuration as:
  {"command": "canrun", "args": ["serve"]}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe starts the MCP stdio server and blocks until the client
// disconnects or a shutdown signal arrives.
func runServe(_ *cobra.Command, args []string) error {
	absPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}

	server := mcp.NewServer(mcp.Options{
		Run:        buildRunOptions(absPath),
		RunTimeout: resolveRunTimeout(),
		Version:    version,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	return server.Serve(ctx)
}
