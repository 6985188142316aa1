package probe

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// DatasetProber measures free space on the volume holding the project.
// This is the headroom available to the project's datasets, which can
// differ from the system volume when projects live on a separate mount.
type DatasetProber struct {
	path string
}

// NewDatasetProber returns a prober for dataset headroom at the project
// path. An empty path means the current directory.
func NewDatasetProber(path string) *DatasetProber {
	if path == "" {
		path = "."
	}
	return &DatasetProber{path: path}
}

// Kind returns the resource kind this prober measures.
func (p *DatasetProber) Kind() types.ResourceKind {
	return types.KindDatasetSize
}

// Probe reads free and total bytes for the volume holding the project.
func (p *DatasetProber) Probe(ctx context.Context) types.Measurement {
	m := types.Measurement{Kind: types.KindDatasetSize, Detail: p.path}

	usage, err := disk.UsageWithContext(ctx, p.path)
	if err != nil {
		m.Err = fmt.Sprintf("reading volume usage for %s: %v", p.path, err)
		return m
	}

	m.Available = float64(usage.Free)
	m.Total = float64(usage.Total)
	return m
}
