package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/manifest"
	"github.com/jamesainslie/canrun/pkg/canrun/probe"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// Options configures a readiness run.
type Options struct {
	// Probe configures the system probes.
	Probe probe.Options

	// Resolve configures requirement resolution.
	Resolve manifest.Options
}

// Result carries the report plus the evidence behind it, for verbose
// output and the MCP tools.
type Result struct {
	// Report is the assembled readiness report.
	Report types.Report

	// Measurements holds the raw probe results keyed by kind.
	Measurements map[types.ResourceKind]types.Measurement

	// Resolution holds the requirement evidence. Nil when resolution was
	// degraded by a timeout or walk failure.
	Resolution *manifest.Resolution
}

// Runner executes the probe and resolve phases concurrently, joins them,
// and evaluates readiness. The run-level timeout comes from the caller's
// context.
type Runner struct {
	probes   *probe.Set
	resolver *manifest.Resolver
	logger   *logging.Logger
}

// NewRunner creates a runner with the given options.
func NewRunner(opts Options) *Runner {
	return &Runner{
		probes:   probe.NewSet(opts.Probe),
		resolver: manifest.NewResolver(opts.Resolve),
		logger:   logging.Get("readiness"),
	}
}

// Run probes the system and resolves requirements concurrently, then
// evaluates and assembles the report.
//
// A malformed manifest or unusable project path aborts the run and
// cancels outstanding probes. Every other failure degrades: probes that
// error become unknown verdicts, and a resolution cut short by the
// deadline yields a best-effort report with a warning line instead of an
// error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	var (
		measurements map[types.ResourceKind]types.Measurement
		platform     types.PlatformInfo
		resolution   *manifest.Resolution
		resolveErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		measurements = r.probes.Run(gctx)
		return nil
	})
	g.Go(func() error {
		platform = probe.Platform(gctx)
		return nil
	})
	g.Go(func() error {
		res, err := r.resolver.Resolve(gctx)
		if err != nil {
			if errors.Is(err, types.ErrManifest) || errors.Is(err, types.ErrProjectPath) {
				return err
			}
			resolveErr = err
			return nil
		}
		resolution = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	requirements := map[types.ResourceKind]types.Requirement{}
	if resolution != nil {
		requirements = resolution.Requirements
	} else if resolveErr != nil {
		r.logger.Warn("requirement resolution degraded", "error", resolveErr)
	}

	verdicts := Evaluate(measurements, requirements)
	report := Assemble(verdicts, platform, time.Since(start))
	if resolveErr != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("requirements: resolution incomplete (%v), evaluated without inferred requirements", resolveErr))
	}

	r.logger.Info("readiness evaluated",
		"ready", report.Ready,
		"verdicts", len(report.Verdicts),
		"warnings", len(report.Warnings),
		"elapsed", report.Elapsed)

	return &Result{
		Report:       report,
		Measurements: measurements,
		Resolution:   resolution,
	}, nil
}
