package probe

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// CPUProber measures processor capacity as a logical core count.
type CPUProber struct{}

// NewCPUProber returns a prober for processor capacity.
func NewCPUProber() *CPUProber {
	return &CPUProber{}
}

// Kind returns the resource kind this prober measures.
func (p *CPUProber) Kind() types.ResourceKind {
	return types.KindCPU
}

// Probe counts logical cores. The CPU model name is attached as detail
// when available; failing to read it does not fail the probe.
func (p *CPUProber) Probe(ctx context.Context) types.Measurement {
	m := types.Measurement{Kind: types.KindCPU}

	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		m.Err = fmt.Sprintf("counting logical cores: %v", err)
		return m
	}
	m.Available = float64(count)

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		m.Detail = infos[0].ModelName
	}
	return m
}
