package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/canrun/cmd/canrun/tui"
	"github.com/jamesainslie/canrun/pkg/canrun/config"
	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/manifest"
	"github.com/jamesainslie/canrun/pkg/canrun/output"
	"github.com/jamesainslie/canrun/pkg/canrun/probe"
	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// runCheck is the default command handler: probe, resolve, evaluate,
// report.
func runCheck(_ *cobra.Command, args []string) error {
	absPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}

	opts := buildRunOptions(absPath)
	runTimeout := resolveRunTimeout()

	runID := uuid.NewString()[:8]
	logger := logging.Get("cmd").With("run", runID)
	logger.Info("check started", "project", absPath, "timeout", runTimeout)

	if viper.GetBool("interactive") {
		return runInteractiveCheck(absPath, opts, runTimeout)
	}
	return runNonInteractiveCheck(absPath, opts, runTimeout, logger)
}

// runNonInteractiveCheck runs the readiness pipeline and prints the
// report in the selected format.
func runNonInteractiveCheck(absPath string, opts readiness.Options, runTimeout time.Duration, logger *logging.Logger) error {
	format := resolveFormat()
	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("%w: available formats are %v", err, output.Available())
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	// Handle interrupt: cancel the run and report best-effort.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		printInfo("Interrupted, finishing with partial results...")
		cancel()
	}()

	if format != "json" {
		printInfo("Checking whether %s can run here...", absPath)
	}

	runner := readiness.NewRunner(opts)
	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	doc := output.NewDocument(absPath, result.Report, result.Measurements, documentRequirements(result))
	doc.Verbose = getVerbose()
	if result.Resolution != nil {
		doc.ManifestPath = result.Resolution.ManifestPath
		doc.Dependencies = result.Resolution.Dependencies
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, doc); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	fmt.Print(buf.String())

	logger.Info("check finished", "ready", result.Report.Ready, "format", format)

	if !result.Report.Ready {
		return errNotReady
	}
	return nil
}

// runInteractiveCheck drives the readiness pipeline through the TUI.
func runInteractiveCheck(absPath string, opts readiness.Options, runTimeout time.Duration) error {
	report, err := tui.Run(tui.Options{
		ProjectPath: absPath,
		Run:         opts,
		RunTimeout:  runTimeout,
		Verbose:     getVerbose(),
	})
	if err != nil {
		return err
	}
	// A nil report means the user quit before the run finished.
	if report != nil && !report.Ready {
		return errNotReady
	}
	return nil
}

// resolveProjectPath picks the project directory from the argument or the
// configured default and verifies it is a usable directory.
func resolveProjectPath(args []string) (string, error) {
	path := viper.GetString("project_path")
	if len(args) > 0 {
		path = args[0]
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrProjectPath, err)
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrProjectPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", types.ErrProjectPath, absPath)
		}
		return "", fmt.Errorf("%w: %v", types.ErrProjectPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", types.ErrProjectPath, absPath)
	}
	return absPath, nil
}

// buildRunOptions assembles probe and resolve options from configuration.
func buildRunOptions(absPath string) readiness.Options {
	return readiness.Options{
		Probe: probe.Options{
			Timeout:       resolveProbeTimeout(),
			DiskPath:      viper.GetString("probes.disk_path"),
			ProjectPath:   absPath,
			NvidiaSMIPath: viper.GetString("probes.nvidia_smi_path"),
		},
		Resolve: manifest.Options{
			Root:              absPath,
			DatasetExtensions: viper.GetStringSlice("inference.dataset_extensions"),
			Exclude:           viper.GetStringSlice("exclude"),
			Workers:           viper.GetInt("inference.workers"),
			FollowSymlinks:    viper.GetBool("inference.follow_symlinks"),
		},
	}
}

// resolveRunTimeout returns the run-level timeout: the --timeout flag in
// seconds when given, otherwise the configured duration.
func resolveRunTimeout() time.Duration {
	if d := durationFromSeconds(viper.GetFloat64("timeout")); d > 0 {
		return d
	}
	if d := viper.GetDuration("probes.run_timeout"); d > 0 {
		return d
	}
	return 15 * time.Second
}

// resolveProbeTimeout returns the per-probe timeout: the --probe-timeout
// flag in seconds when given, otherwise the configured duration.
func resolveProbeTimeout() time.Duration {
	if d := durationFromSeconds(viper.GetFloat64("probe_timeout")); d > 0 {
		return d
	}
	if d := viper.GetDuration("probes.timeout"); d > 0 {
		return d
	}
	return 5 * time.Second
}

// durationFromSeconds converts a seconds value from a flag into a
// duration. Zero or negative means unset.
func durationFromSeconds(sec float64) time.Duration {
	if sec <= 0 {
		return 0
	}
	return time.Duration(sec * float64(time.Second))
}

// resolveFormat returns the report format, defaulting to pretty on a
// terminal and text otherwise.
func resolveFormat() string {
	if format := viper.GetString("format"); format != "" {
		return format
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return "pretty"
	}
	return "text"
}

// documentRequirements extracts the requirement map for the output
// document from a result whose resolution may be nil.
func documentRequirements(result *readiness.Result) map[types.ResourceKind]types.Requirement {
	if result.Resolution == nil {
		return nil
	}
	return result.Resolution.Requirements
}
