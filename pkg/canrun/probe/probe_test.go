package probe

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// fakeProber returns a canned measurement after an optional delay.
type fakeProber struct {
	kind  types.ResourceKind
	m     types.Measurement
	delay time.Duration
}

func (f *fakeProber) Kind() types.ResourceKind { return f.kind }

func (f *fakeProber) Probe(ctx context.Context) types.Measurement {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return types.Measurement{Kind: f.kind, Err: ctx.Err().Error()}
		}
	}
	return f.m
}

func newFakeSet(timeout time.Duration, probers ...Prober) *Set {
	return &Set{
		probers: probers,
		timeout: timeout,
		logger:  logging.Get("probe"),
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want %v", opts.Timeout, 5*time.Second)
	}
	if opts.DiskPath != "/" {
		t.Errorf("DiskPath = %q, want %q", opts.DiskPath, "/")
	}
	if opts.ProjectPath != "." {
		t.Errorf("ProjectPath = %q, want %q", opts.ProjectPath, ".")
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if opts.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want default %v", opts.Timeout, 5*time.Second)
	}
	if opts.DiskPath != "/" {
		t.Errorf("DiskPath = %q, want default %q", opts.DiskPath, "/")
	}
	if opts.ProjectPath != "." {
		t.Errorf("ProjectPath = %q, want default %q", opts.ProjectPath, ".")
	}
}

func TestNewSetCoversAllKinds(t *testing.T) {
	set := NewSet(DefaultOptions())

	seen := make(map[types.ResourceKind]bool)
	for _, p := range set.probers {
		seen[p.Kind()] = true
	}

	for _, k := range types.Kinds() {
		if !seen[k] {
			t.Errorf("NewSet() has no prober for kind %v", k)
		}
	}
	if len(set.probers) != len(types.Kinds()) {
		t.Errorf("NewSet() has %d probers, want %d", len(set.probers), len(types.Kinds()))
	}
}

func TestSetRunCollectsAllMeasurements(t *testing.T) {
	set := newFakeSet(time.Second,
		&fakeProber{kind: types.KindRAM, m: types.Measurement{Available: float64(8 * types.GiB)}},
		&fakeProber{kind: types.KindCPU, m: types.Measurement{Available: 8}},
		&fakeProber{kind: types.KindDisk, m: types.Measurement{Available: float64(100 * types.GiB)}},
	)

	got := set.Run(context.Background())

	if len(got) != 3 {
		t.Fatalf("Run() returned %d measurements, want 3", len(got))
	}

	ram, ok := got[types.KindRAM]
	if !ok {
		t.Fatal("Run() missing ram measurement")
	}
	if ram.Available != float64(8*types.GiB) {
		t.Errorf("ram Available = %v, want %v", ram.Available, float64(8*types.GiB))
	}
	if ram.Kind != types.KindRAM {
		t.Errorf("ram Kind = %v, want %v", ram.Kind, types.KindRAM)
	}
}

func TestSetRunStampsKindAndDuration(t *testing.T) {
	// The prober leaves Kind empty; Run must fill it in.
	set := newFakeSet(time.Second,
		&fakeProber{kind: types.KindCPU, m: types.Measurement{Available: 4}},
	)

	got := set.Run(context.Background())

	m, ok := got[types.KindCPU]
	if !ok {
		t.Fatal("Run() missing cpu measurement")
	}
	if m.Kind != types.KindCPU {
		t.Errorf("Kind = %v, want %v", m.Kind, types.KindCPU)
	}
	if m.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", m.Duration)
	}
}

func TestSetRunProbeTimeout(t *testing.T) {
	set := newFakeSet(50*time.Millisecond,
		&fakeProber{kind: types.KindGPUMemory, delay: 5 * time.Second},
		&fakeProber{kind: types.KindRAM, m: types.Measurement{Available: float64(16 * types.GiB)}},
	)

	start := time.Now()
	got := set.Run(context.Background())
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("Run() took %v, timed-out probe should not stall the set", elapsed)
	}

	gpu := got[types.KindGPUMemory]
	if gpu.Err == "" {
		t.Error("timed-out probe should report an error")
	}

	ram := got[types.KindRAM]
	if !ram.OK() {
		t.Errorf("healthy probe should succeed, got error %q", ram.Err)
	}
}

func TestSetRunFailureIsolation(t *testing.T) {
	set := newFakeSet(time.Second,
		&fakeProber{kind: types.KindGPUMemory, m: types.Measurement{Err: "nvidia-smi not found"}},
		&fakeProber{kind: types.KindRAM, m: types.Measurement{Available: float64(16 * types.GiB)}},
		&fakeProber{kind: types.KindDisk, m: types.Measurement{Available: float64(50 * types.GiB)}},
	)

	got := set.Run(context.Background())

	if len(got) != 3 {
		t.Fatalf("Run() returned %d measurements, want 3", len(got))
	}
	if got[types.KindGPUMemory].OK() {
		t.Error("failed probe should carry its error")
	}
	if !got[types.KindRAM].OK() || !got[types.KindDisk].OK() {
		t.Error("healthy probes should be unaffected by a failing one")
	}
}

func TestSetRunOnProbeHook(t *testing.T) {
	var mu sync.Mutex
	var seen []types.ResourceKind

	set := newFakeSet(time.Second,
		&fakeProber{kind: types.KindRAM, m: types.Measurement{Available: float64(8 * types.GiB)}},
		&fakeProber{kind: types.KindCPU, m: types.Measurement{Available: 8}},
	)
	set.onProbe = func(m types.Measurement) {
		mu.Lock()
		seen = append(seen, m.Kind)
		mu.Unlock()
	}

	set.Run(context.Background())

	if len(seen) != 2 {
		t.Fatalf("OnProbe called %d times, want 2", len(seen))
	}
	kinds := make(map[types.ResourceKind]bool)
	for _, k := range seen {
		kinds[k] = true
	}
	if !kinds[types.KindRAM] || !kinds[types.KindCPU] {
		t.Errorf("OnProbe saw kinds %v, want ram and cpu", seen)
	}
}

func TestRAMProber(t *testing.T) {
	m := NewRAMProber().Probe(context.Background())

	if !m.OK() {
		t.Fatalf("Probe() error = %q", m.Err)
	}
	if m.Kind != types.KindRAM {
		t.Errorf("Kind = %v, want %v", m.Kind, types.KindRAM)
	}
	if m.Available <= 0 {
		t.Errorf("Available = %v, want > 0", m.Available)
	}
	if m.Total < m.Available {
		t.Errorf("Total = %v, want >= Available %v", m.Total, m.Available)
	}
}

func TestCPUProber(t *testing.T) {
	m := NewCPUProber().Probe(context.Background())

	if !m.OK() {
		t.Fatalf("Probe() error = %q", m.Err)
	}
	if m.Available < 1 {
		t.Errorf("Available = %v, want >= 1 core", m.Available)
	}
}

func TestDiskProber(t *testing.T) {
	m := NewDiskProber("/").Probe(context.Background())

	if !m.OK() {
		t.Fatalf("Probe() error = %q", m.Err)
	}
	if m.Total <= 0 {
		t.Errorf("Total = %v, want > 0", m.Total)
	}
	if m.Detail != "/" {
		t.Errorf("Detail = %q, want %q", m.Detail, "/")
	}
}

func TestDatasetProber(t *testing.T) {
	tempDir := t.TempDir()

	m := NewDatasetProber(tempDir).Probe(context.Background())

	if !m.OK() {
		t.Fatalf("Probe() error = %q", m.Err)
	}
	if m.Kind != types.KindDatasetSize {
		t.Errorf("Kind = %v, want %v", m.Kind, types.KindDatasetSize)
	}
	if m.Available <= 0 {
		t.Errorf("Available = %v, want > 0", m.Available)
	}
}

func TestDatasetProberMissingPath(t *testing.T) {
	m := NewDatasetProber("/nonexistent/canrun/project").Probe(context.Background())

	if m.OK() {
		t.Error("Probe() on missing path should report an error")
	}
}

func TestGPUProberMissingTool(t *testing.T) {
	m := NewGPUProber("/nonexistent/bin/nvidia-smi").Probe(context.Background())

	if m.OK() {
		t.Fatal("Probe() with missing tool should report an error")
	}
	if !strings.Contains(m.Err, "not found") {
		t.Errorf("Err = %q, want mention of missing tool", m.Err)
	}
}

func TestParseSMIOutput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantMiB   int64
		wantNames int
		wantErr   bool
	}{
		{
			name:      "single device",
			input:     "24564, NVIDIA GeForce RTX 4090\n",
			wantMiB:   24564,
			wantNames: 1,
		},
		{
			name:      "multiple devices",
			input:     "24564, NVIDIA GeForce RTX 4090\n16384, NVIDIA RTX A4000\n",
			wantMiB:   40948,
			wantNames: 2,
		},
		{
			name:      "no devices",
			input:     "",
			wantMiB:   0,
			wantNames: 0,
		},
		{
			name:      "blank lines skipped",
			input:     "\n8192, Tesla T4\n\n",
			wantMiB:   8192,
			wantNames: 1,
		},
		{
			name:    "garbage memory field",
			input:   "lots, Imaginary GPU\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMiB, gotNames, err := parseSMIOutput([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("parseSMIOutput() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if gotMiB != tt.wantMiB {
				t.Errorf("parseSMIOutput() total = %d MiB, want %d", gotMiB, tt.wantMiB)
			}
			if len(gotNames) != tt.wantNames {
				t.Errorf("parseSMIOutput() names = %d, want %d", len(gotNames), tt.wantNames)
			}
		})
	}
}

func TestPlatform(t *testing.T) {
	info := Platform(context.Background())

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", info.Arch, runtime.GOARCH)
	}
}
