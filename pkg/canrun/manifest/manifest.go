// Package manifest resolves a project's resource requirements. Projects
// can declare requirements in a canrun.yaml manifest at the root; kinds
// the manifest does not cover are inferred from the project tree and its
// dependency files.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// Names lists the manifest file names probed at the project root, in order.
var Names = []string{"canrun.yaml", ".canrun.yaml"}

// ByteQuantity is a byte requirement. YAML numbers are read as gibibytes;
// strings are parsed as explicit quantities such as "16GiB" or "500MB".
type ByteQuantity float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *ByteQuantity) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!int", "!!float":
		var gib float64
		if err := value.Decode(&gib); err != nil {
			return err
		}
		if gib < 0 {
			return fmt.Errorf("%w: quantity %v is negative", types.ErrInvalidQuantity, gib)
		}
		*q = ByteQuantity(gib * float64(types.GiB))
		return nil
	case "!!str":
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		b, err := types.ParseBytes(s)
		if err != nil {
			return err
		}
		*q = ByteQuantity(b)
		return nil
	default:
		return fmt.Errorf("%w: expected a number or quantity string, got %s", types.ErrInvalidQuantity, value.Tag)
	}
}

// CoreQuantity is a CPU requirement in cores. YAML numbers are read as
// core counts; strings are parsed as Kubernetes style quantities such as
// "1500m".
type CoreQuantity float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *CoreQuantity) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!int", "!!float":
		var cores float64
		if err := value.Decode(&cores); err != nil {
			return err
		}
		if cores < 0 {
			return fmt.Errorf("%w: core count %v is negative", types.ErrInvalidQuantity, cores)
		}
		*q = CoreQuantity(cores)
		return nil
	case "!!str":
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		cores, err := types.ParseCores(s)
		if err != nil {
			return err
		}
		*q = CoreQuantity(cores)
		return nil
	default:
		return fmt.Errorf("%w: expected a number or core string, got %s", types.ErrInvalidQuantity, value.Tag)
	}
}

// Thresholds holds one quantity per resource kind. All fields are optional;
// a nil field means the manifest does not constrain that kind.
type Thresholds struct {
	RAM       *ByteQuantity `yaml:"ram"`
	CPUCores  *CoreQuantity `yaml:"cpu_cores"`
	GPUMemory *ByteQuantity `yaml:"gpu_memory"`
	Disk      *ByteQuantity `yaml:"disk"`
	Dataset   *ByteQuantity `yaml:"dataset"`
}

// value returns the threshold for a kind in its canonical unit.
func (t *Thresholds) value(kind types.ResourceKind) (float64, bool) {
	if t == nil {
		return 0, false
	}
	switch kind {
	case types.KindRAM:
		if t.RAM != nil {
			return float64(*t.RAM), true
		}
	case types.KindCPU:
		if t.CPUCores != nil {
			return float64(*t.CPUCores), true
		}
	case types.KindGPUMemory:
		if t.GPUMemory != nil {
			return float64(*t.GPUMemory), true
		}
	case types.KindDisk:
		if t.Disk != nil {
			return float64(*t.Disk), true
		}
	case types.KindDatasetSize:
		if t.Dataset != nil {
			return float64(*t.Dataset), true
		}
	}
	return 0, false
}

// File is the on-disk shape of a canrun manifest. Top-level keys are the
// required thresholds; the recommended block holds softer ones. A
// recommended threshold for a kind with no required one is ignored.
type File struct {
	Thresholds  `yaml:",inline"`
	Recommended *Thresholds `yaml:"recommended"`
}

// Requirements converts the declared thresholds to requirements in
// canonical kind order.
func (f *File) Requirements() []types.Requirement {
	if f == nil {
		return nil
	}

	var reqs []types.Requirement
	for _, kind := range types.Kinds() {
		required, ok := f.Thresholds.value(kind)
		if !ok {
			continue
		}

		req := types.Requirement{
			Kind:     kind,
			Required: required,
			Source:   types.SourceDeclared,
		}
		if rec, ok := f.Recommended.value(kind); ok {
			req.Recommended = rec
		}
		reqs = append(reqs, req)
	}
	return reqs
}

// Parse decodes manifest bytes. Unknown keys are rejected so typos in a
// manifest surface instead of silently dropping a requirement.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty manifest declares nothing.
			return &File{}, nil
		}
		return nil, err
	}
	return &f, nil
}

// Load reads the manifest at the project root, trying each known name in
// order. A project without a manifest returns (nil, "", nil). A manifest
// that exists but cannot be read or parsed wraps types.ErrManifest.
func Load(root string) (*File, string, error) {
	for _, name := range Names {
		path := filepath.Join(root, name)

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("%w: reading %s: %v", types.ErrManifest, path, err)
		}

		f, err := Parse(data)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", types.ErrManifest, name, err)
		}
		return f, path, nil
	}
	return nil, "", nil
}
