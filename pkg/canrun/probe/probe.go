// Package probe measures machine resources for the canrun readiness
// analyzer. Each resource kind has its own prober; a Set runs them
// concurrently with individual timeouts so one slow or broken probe never
// stalls the run or takes down the others.
package probe

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/canrun/pkg/canrun/config"
	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// Prober measures a single resource kind. Probe never returns a Go error;
// failures are reported through the Measurement's Err field so one broken
// probe degrades to an unknown verdict instead of aborting the run.
type Prober interface {
	// Kind returns the resource kind this prober measures.
	Kind() types.ResourceKind

	// Probe measures the resource. Implementations must honor ctx
	// cancellation and return promptly when the deadline passes.
	Probe(ctx context.Context) types.Measurement
}

// Options configures a probe Set.
type Options struct {
	// Timeout bounds each individual probe.
	Timeout time.Duration

	// DiskPath is the mount point the disk probe inspects.
	DiskPath string

	// ProjectPath is the directory whose volume the dataset headroom
	// probe inspects.
	ProjectPath string

	// NvidiaSMIPath overrides the nvidia-smi binary location.
	// Empty means look it up on PATH.
	NvidiaSMIPath string

	// OnProbe is called as each probe finishes, with its measurement.
	// It must be safe to call from multiple goroutines.
	OnProbe func(types.Measurement)
}

// DefaultOptions returns options with sensible defaults for most systems.
func DefaultOptions() Options {
	return Options{
		Timeout:     5 * time.Second,
		DiskPath:    config.DefaultDiskPath,
		ProjectPath: config.DefaultProjectPath,
	}
}

// Validate checks if the options are valid and fills in defaults.
func (o *Options) Validate() error {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.DiskPath == "" {
		o.DiskPath = config.DefaultDiskPath
	}
	if o.ProjectPath == "" {
		o.ProjectPath = config.DefaultProjectPath
	}
	return nil
}

// Set runs a group of probers concurrently.
type Set struct {
	probers []Prober
	timeout time.Duration
	onProbe func(types.Measurement)
	logger  *logging.Logger
}

// NewSet returns a Set covering all supported resource kinds.
func NewSet(opts Options) *Set {
	_ = opts.Validate()

	return &Set{
		probers: []Prober{
			NewRAMProber(),
			NewCPUProber(),
			NewGPUProber(opts.NvidiaSMIPath),
			NewDiskProber(opts.DiskPath),
			NewDatasetProber(opts.ProjectPath),
		},
		timeout: opts.Timeout,
		onProbe: opts.OnProbe,
		logger:  logging.Get("probe"),
	}
}

// Run executes all probes concurrently and returns one measurement per
// kind. It always returns a complete map: probes that fail or time out
// contribute a measurement with Err set rather than being dropped.
func (s *Set) Run(ctx context.Context) map[types.ResourceKind]types.Measurement {
	results := make([]types.Measurement, len(s.probers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range s.probers {
		g.Go(func() error {
			results[i] = s.runOne(gctx, p)
			return nil
		})
	}
	// Probers report failure through Measurement.Err, never an error.
	_ = g.Wait()

	measurements := make(map[types.ResourceKind]types.Measurement, len(results))
	for _, m := range results {
		measurements[m.Kind] = m
	}
	return measurements
}

// runOne executes a single probe under its own timeout and stamps the
// measurement with the observed duration.
func (s *Set) runOne(ctx context.Context, p Prober) types.Measurement {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	m := p.Probe(probeCtx)
	m.Kind = p.Kind()
	m.Duration = time.Since(start)

	if m.Err != "" {
		s.logger.Warn("probe failed", "kind", m.Kind, "error", m.Err, "duration", m.Duration)
	} else {
		s.logger.Debug("probe finished", "kind", m.Kind, "available", m.Available, "duration", m.Duration)
	}

	if s.onProbe != nil {
		s.onProbe(m)
	}
	return m
}
