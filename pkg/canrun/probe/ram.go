package probe

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// RAMProber measures system memory.
type RAMProber struct{}

// NewRAMProber returns a prober for system memory.
func NewRAMProber() *RAMProber {
	return &RAMProber{}
}

// Kind returns the resource kind this prober measures.
func (p *RAMProber) Kind() types.ResourceKind {
	return types.KindRAM
}

// Probe reads total and available memory in bytes.
func (p *RAMProber) Probe(ctx context.Context) types.Measurement {
	m := types.Measurement{Kind: types.KindRAM}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		m.Err = fmt.Sprintf("reading virtual memory: %v", err)
		return m
	}

	m.Available = float64(vm.Available)
	m.Total = float64(vm.Total)
	return m
}
