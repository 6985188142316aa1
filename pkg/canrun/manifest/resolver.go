package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamesainslie/canrun/pkg/canrun/config"
	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// Options configures requirement resolution.
type Options struct {
	// Root is the project directory.
	Root string

	// DatasetExtensions lists the file extensions counted as dataset
	// artifacts during inference.
	DatasetExtensions []string

	// Exclude lists directory names skipped by the inference walk.
	Exclude []string

	// Workers is the number of concurrent walk workers.
	Workers int

	// FollowSymlinks enables following symlinks during the walk.
	FollowSymlinks bool
}

// DefaultOptions returns resolution options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Root:              config.DefaultProjectPath,
		DatasetExtensions: config.DefaultDatasetExtensions,
		Exclude:           config.DefaultExclusions,
		Workers:           config.WalkWorkers(0),
	}
}

// Validate fills in defaults for zero-valued fields and clamps the
// worker count.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = config.DefaultProjectPath
	}
	if len(o.DatasetExtensions) == 0 {
		o.DatasetExtensions = config.DefaultDatasetExtensions
	}
	o.Workers = config.WalkWorkers(o.Workers)
	return nil
}

// Resolution carries the resolved requirements plus the evidence behind
// them, for verbose output and the MCP tools.
type Resolution struct {
	// Requirements maps each constrained kind to its requirement. Kinds
	// with no declared or inferred constraint are absent.
	Requirements map[types.ResourceKind]types.Requirement

	// ManifestPath is the manifest file that was loaded, empty when the
	// project has none.
	ManifestPath string

	// Stats summarizes the inference walk.
	Stats *TreeStats

	// Dependencies lists the declared packages keyed by ecosystem.
	Dependencies map[string][]string

	// Indicators summarizes heavy dependencies.
	Indicators Indicators
}

// Resolver produces a project's resource requirements, preferring
// declared thresholds and falling back to inference.
type Resolver struct {
	opts   Options
	logger *logging.Logger
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts Options) *Resolver {
	_ = opts.Validate()
	return &Resolver{
		opts:   opts,
		logger: logging.Get("manifest"),
	}
}

// Resolve loads the declared manifest and fills the remaining kinds by
// inference. A malformed manifest or unusable root is fatal; missing
// dependency files simply contribute nothing.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	file, manifestPath, err := Load(r.opts.Root)
	if err != nil {
		return nil, err
	}
	if manifestPath != "" {
		r.logger.Debug("manifest loaded", "path", manifestPath)
	}

	walker := NewWalker(WalkOptions{
		Root:              r.opts.Root,
		DatasetExtensions: r.opts.DatasetExtensions,
		Exclude:           r.opts.Exclude,
		Workers:           r.opts.Workers,
		FollowSymlinks:    r.opts.FollowSymlinks,
	})
	stats, err := walker.Walk(ctx)
	if err != nil {
		return nil, err
	}

	deps := Dependencies(r.opts.Root)

	res := &Resolution{
		Requirements: make(map[types.ResourceKind]types.Requirement),
		ManifestPath: manifestPath,
		Stats:        stats,
		Dependencies: deps,
		Indicators:   indicatorsFrom(deps),
	}

	declared := file.Requirements()
	for _, req := range declared {
		res.Requirements[req.Kind] = req
	}
	r.inferMissing(res)

	r.logger.Info("requirements resolved",
		"declared", len(declared),
		"total", len(res.Requirements),
		"manifest", manifestPath != "")

	return res, nil
}

// inferMissing adds inferred requirements for kinds the manifest left
// unconstrained.
func (r *Resolver) inferMissing(res *Resolution) {
	stats := res.Stats
	ind := res.Indicators

	if _, ok := res.Requirements[types.KindDatasetSize]; !ok && stats.DatasetBytes > 0 {
		res.Requirements[types.KindDatasetSize] = types.Requirement{
			Kind:     types.KindDatasetSize,
			Required: float64(stats.DatasetBytes),
			Source:   types.SourceInferred,
			Detail: fmt.Sprintf("%d dataset files totalling %s",
				stats.DatasetFiles, types.FormatBytes(float64(stats.DatasetBytes))),
		}
	}

	if _, ok := res.Requirements[types.KindDisk]; !ok && stats.TotalBytes > 0 {
		res.Requirements[types.KindDisk] = types.Requirement{
			Kind:     types.KindDisk,
			Required: float64(stats.TotalBytes),
			Source:   types.SourceInferred,
			Detail:   fmt.Sprintf("project tree occupies %s", types.FormatBytes(float64(stats.TotalBytes))),
		}
	}

	if len(ind.Frameworks) == 0 {
		return
	}
	frameworks := strings.Join(ind.Frameworks, ", ")

	if _, ok := res.Requirements[types.KindRAM]; !ok {
		res.Requirements[types.KindRAM] = types.Requirement{
			Kind:        types.KindRAM,
			Required:    float64(mlRAMRequired),
			Recommended: float64(mlRAMRecommended),
			Source:      types.SourceInferred,
			Detail:      "ML frameworks present: " + frameworks,
		}
	}

	if _, ok := res.Requirements[types.KindGPUMemory]; !ok {
		req := types.Requirement{
			Kind:     types.KindGPUMemory,
			Required: float64(mlGPURequired),
			Source:   types.SourceInferred,
			Detail:   "ML frameworks present: " + frameworks,
		}
		if len(ind.LargeModels) > 0 {
			req.Recommended = float64(mlGPURecommended)
			req.Detail += "; large model libraries: " + strings.Join(ind.LargeModels, ", ")
		}
		res.Requirements[types.KindGPUMemory] = req
	}
}
