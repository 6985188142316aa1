package probe

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// Platform describes the machine the analyzer runs on. Host details are
// best effort; OS and architecture are always populated.
func Platform(ctx context.Context) types.PlatformInfo {
	info := types.PlatformInfo{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = h.Hostname
		info.Kernel = h.KernelVersion
	}
	return info
}
