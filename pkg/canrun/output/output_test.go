package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// sampleReport builds a report covering every status. When ready is
// false the disk verdict fails.
func sampleReport(ready bool) types.Report {
	disk := types.Verdict{
		Kind:      types.KindDisk,
		Status:    types.StatusOK,
		Available: 100 * float64(types.GiB),
		Required:  50 * float64(types.GiB),
		Measured:  true,
	}
	report := types.Report{
		Ready: ready,
		Warnings: []string{
			"CPU: at or below the recommended 8 cores",
			"GPU memory: cannot verify: nvidia-smi not found",
		},
		Platform:    types.PlatformInfo{OS: "linux", Arch: "amd64", Hostname: "builder"},
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Elapsed:     120 * time.Millisecond,
	}
	if !ready {
		disk.Status = types.StatusFail
		disk.Available = 42 * float64(types.GiB)
		disk.Message = "short by 8.0 GiB"
		report.Suggestion = "needs 8.0 GiB more disk (42 GiB available, 50 GiB required)"
	}

	report.Verdicts = []types.Verdict{
		{
			Kind:      types.KindRAM,
			Status:    types.StatusOK,
			Available: 24 * float64(types.GiB),
			Required:  8 * float64(types.GiB),
			Measured:  true,
		},
		{
			Kind:        types.KindCPU,
			Status:      types.StatusWarning,
			Available:   8,
			Required:    6,
			Recommended: 8,
			Measured:    true,
			Message:     "at or below the recommended 8 cores",
		},
		{
			Kind:     types.KindGPUMemory,
			Status:   types.StatusUnknown,
			Required: 4 * float64(types.GiB),
			Message:  "cannot verify: nvidia-smi not found",
		},
		disk,
		{
			Kind:      types.KindDatasetSize,
			Status:    types.StatusOK,
			Available: 120 * float64(types.GiB),
			Measured:  true,
		},
	}
	return report
}

func sampleDocument(ready bool) *Document {
	return &Document{
		Report:      sampleReport(ready),
		ProjectPath: "/home/user/project",
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", func() Formatter {
		return &TextFormatter{}
	})

	formatter, err := reg.Get("test")
	require.NoError(t, err)
	assert.NotNil(t, formatter)
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownFormat)
	assert.Contains(t, err.Error(), "nope")
}

func TestRegistry_Available(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", func() Formatter { return &TextFormatter{} })
	reg.Register("a", func() Formatter { return &TextFormatter{} })

	assert.Equal(t, []string{"a", "b"}, reg.Available())
}

func TestDefaultRegistry_HasBuiltinFormatters(t *testing.T) {
	available := Available()
	for _, name := range []string{"text", "json", "pretty"} {
		assert.Contains(t, available, name)
	}
}

func TestNewDocument_CanonicalOrdering(t *testing.T) {
	ms := map[types.ResourceKind]types.Measurement{
		types.KindDisk: {Kind: types.KindDisk, Available: 1},
		types.KindRAM:  {Kind: types.KindRAM, Available: 2},
	}
	reqs := map[types.ResourceKind]types.Requirement{
		types.KindCPU: {Kind: types.KindCPU, Required: 4},
		types.KindRAM: {Kind: types.KindRAM, Required: 8},
	}

	doc := NewDocument("/p", types.Report{}, ms, reqs)

	require.Len(t, doc.Probes, 2)
	assert.Equal(t, types.KindRAM, doc.Probes[0].Kind)
	assert.Equal(t, types.KindDisk, doc.Probes[1].Kind)

	require.Len(t, doc.Requirements, 2)
	assert.Equal(t, types.KindRAM, doc.Requirements[0].Kind)
	assert.Equal(t, types.KindCPU, doc.Requirements[1].Kind)
}
