package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// defaultNvidiaSMI is the binary used when no override is configured.
const defaultNvidiaSMI = "nvidia-smi"

// GPUProber measures video memory across all NVIDIA devices via
// nvidia-smi. Machines without the tool degrade to an unknown verdict;
// machines with the tool but no devices report zero capacity.
type GPUProber struct {
	smiPath string
}

// NewGPUProber returns a prober for GPU memory. An empty path means
// nvidia-smi is looked up on PATH.
func NewGPUProber(smiPath string) *GPUProber {
	if smiPath == "" {
		smiPath = defaultNvidiaSMI
	}
	return &GPUProber{smiPath: smiPath}
}

// Kind returns the resource kind this prober measures.
func (p *GPUProber) Kind() types.ResourceKind {
	return types.KindGPUMemory
}

// Probe queries nvidia-smi for per-device memory capacity and sums it.
func (p *GPUProber) Probe(ctx context.Context) types.Measurement {
	m := types.Measurement{Kind: types.KindGPUMemory}

	path, err := exec.LookPath(p.smiPath)
	if err != nil {
		m.Err = fmt.Sprintf("%s not found: GPU memory cannot be measured", p.smiPath)
		return m
	}

	out, err := exec.CommandContext(ctx, path,
		"--query-gpu=memory.total,name",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		m.Err = fmt.Sprintf("running %s: %v", p.smiPath, err)
		return m
	}

	totalMiB, names, err := parseSMIOutput(out)
	if err != nil {
		m.Err = fmt.Sprintf("parsing %s output: %v", p.smiPath, err)
		return m
	}

	m.Available = float64(totalMiB) * float64(types.MiB)
	if len(names) > 0 {
		m.Detail = strings.Join(names, ", ")
	} else {
		m.Detail = "no GPU devices reported"
	}
	return m
}

// parseSMIOutput parses CSV rows of the form "24564, NVIDIA RTX 4090"
// where the first column is device memory in MiB.
func parseSMIOutput(out []byte) (int64, []string, error) {
	var totalMiB int64
	var names []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		memField, name, _ := strings.Cut(line, ",")
		memMiB, err := strconv.ParseInt(strings.TrimSpace(memField), 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("bad memory field %q", memField)
		}

		totalMiB += memMiB
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, err
	}

	return totalMiB, names, nil
}
