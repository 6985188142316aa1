package probe

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// DiskProber measures free space on the system volume.
type DiskProber struct {
	path string
}

// NewDiskProber returns a prober for free disk space at the given mount
// point. An empty path means the filesystem root.
func NewDiskProber(path string) *DiskProber {
	if path == "" {
		path = "/"
	}
	return &DiskProber{path: path}
}

// Kind returns the resource kind this prober measures.
func (p *DiskProber) Kind() types.ResourceKind {
	return types.KindDisk
}

// Probe reads free and total bytes for the configured mount point.
func (p *DiskProber) Probe(ctx context.Context) types.Measurement {
	m := types.Measurement{Kind: types.KindDisk, Detail: p.path}

	usage, err := disk.UsageWithContext(ctx, p.path)
	if err != nil {
		m.Err = fmt.Sprintf("reading disk usage for %s: %v", p.path, err)
		return m
	}

	m.Available = float64(usage.Free)
	m.Total = float64(usage.Total)
	return m
}
