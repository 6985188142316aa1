// Package types provides core data types for the canrun readiness analyzer.
// It defines the resource kinds the analyzer understands, the measurement,
// requirement, verdict, and report structures that flow through a run, and
// helpers for parsing and formatting resource quantities.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BTBurke/k8sresource"
	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// ResourceKind identifies one of the machine resources the analyzer probes
// and compares. The set is closed; Kinds returns the canonical order.
type ResourceKind string

// Supported resource kinds.
const (
	// KindRAM is system memory, measured in bytes.
	KindRAM ResourceKind = "ram"

	// KindCPU is processor capacity, measured in logical core count.
	KindCPU ResourceKind = "cpu"

	// KindGPUMemory is video memory across all detected GPUs, in bytes.
	KindGPUMemory ResourceKind = "gpu_memory"

	// KindDisk is free space on the system volume, in bytes.
	KindDisk ResourceKind = "disk"

	// KindDatasetSize is free space on the volume holding the project,
	// in bytes. It is compared against the project's dataset footprint.
	KindDatasetSize ResourceKind = "dataset_size"
)

// Kinds returns all resource kinds in canonical order. Verdicts are always
// emitted in this order regardless of probe completion order.
func Kinds() []ResourceKind {
	return []ResourceKind{KindRAM, KindCPU, KindGPUMemory, KindDisk, KindDatasetSize}
}

// Label returns a short human-readable name for the kind.
func (k ResourceKind) Label() string {
	switch k {
	case KindRAM:
		return "RAM"
	case KindCPU:
		return "CPU"
	case KindGPUMemory:
		return "GPU memory"
	case KindDisk:
		return "disk"
	case KindDatasetSize:
		return "dataset headroom"
	default:
		return string(k)
	}
}

// IsBytes reports whether the kind's canonical unit is bytes.
// The only non-byte kind is CPU, which counts cores.
func (k ResourceKind) IsBytes() bool {
	return k != KindCPU
}

// Measurement is the result of one probe: how much of a resource the
// machine has right now. Quantities are in canonical units (bytes, or core
// count for CPU). A Measurement is immutable once the probe returns it.
type Measurement struct {
	// Kind is the resource this measurement describes.
	Kind ResourceKind `json:"kind"`

	// Available is the usable quantity in the canonical unit.
	Available float64 `json:"available"`

	// Total is the installed quantity, when the probe can tell it apart
	// from Available (e.g. total vs. available RAM). Zero when unknown.
	Total float64 `json:"total,omitempty"`

	// Detail carries probe-specific context for verbose output, such as
	// a GPU model name or the mount point a disk probe inspected.
	Detail string `json:"detail,omitempty"`

	// Duration is how long the probe took.
	Duration time.Duration `json:"duration,omitempty"`

	// Err is the failure reason when the probe could not measure.
	// A non-empty Err means Available is meaningless and the kind
	// degrades to an unknown verdict, never a crash.
	Err string `json:"error,omitempty"`
}

// OK reports whether the measurement succeeded.
func (m Measurement) OK() bool {
	return m.Err == ""
}

// RequirementSource records where a requirement came from.
type RequirementSource string

// Requirement sources.
const (
	// SourceDeclared means the project manifest named the requirement.
	SourceDeclared RequirementSource = "declared"

	// SourceInferred means the analyzer derived the requirement from the
	// project tree or its dependency files.
	SourceInferred RequirementSource = "inferred"
)

// Requirement is one resource demand of the target project, in the same
// canonical unit as the matching Measurement. Immutable once resolved.
type Requirement struct {
	// Kind is the resource this requirement constrains.
	Kind ResourceKind `json:"kind"`

	// Required is the minimum quantity the project needs.
	Required float64 `json:"required"`

	// Recommended is an optional softer threshold. Meeting Required but
	// not Recommended yields a warning rather than a failure. Zero means
	// no recommended threshold exists.
	Recommended float64 `json:"recommended,omitempty"`

	// Source records whether the requirement was declared or inferred.
	Source RequirementSource `json:"source"`

	// Detail explains an inferred requirement, e.g. which dependency or
	// dataset files produced it.
	Detail string `json:"detail,omitempty"`
}

// Status classifies one verdict.
type Status string

// Verdict statuses.
const (
	// StatusOK means the machine satisfies the requirement, or no
	// requirement exists for the kind.
	StatusOK Status = "ok"

	// StatusWarning means the requirement is met but the recommended
	// threshold is not.
	StatusWarning Status = "warning"

	// StatusFail means the machine does not meet the requirement.
	StatusFail Status = "fail"

	// StatusUnknown means a requirement exists but the measurement
	// failed, so no comparison was possible.
	StatusUnknown Status = "unknown"
)

// Verdict is the comparison outcome for a single resource kind.
type Verdict struct {
	// Kind is the resource this verdict covers.
	Kind ResourceKind `json:"kind"`

	// Status is the outcome of the comparison.
	Status Status `json:"status"`

	// Available is the measured quantity. Only meaningful when Measured
	// is true.
	Available float64 `json:"available"`

	// Required is the demanded quantity; zero when no requirement exists.
	Required float64 `json:"required"`

	// Recommended is the softer threshold; zero when absent.
	Recommended float64 `json:"recommended,omitempty"`

	// Measured reports whether a usable measurement backed this verdict.
	Measured bool `json:"measured"`

	// Message explains warning, failure, and unknown outcomes.
	Message string `json:"message,omitempty"`
}

// PlatformInfo describes the machine the analyzer ran on.
type PlatformInfo struct {
	// OS is the operating system name, e.g. "linux".
	OS string `json:"os"`

	// Arch is the machine architecture, e.g. "arm64".
	Arch string `json:"arch"`

	// Hostname is the machine's host name.
	Hostname string `json:"hostname,omitempty"`

	// Kernel is the kernel version string.
	Kernel string `json:"kernel,omitempty"`
}

// Report is the terminal artifact of a readiness run. Once returned it is
// owned by the caller and never mutated.
type Report struct {
	// Verdicts holds one verdict per evaluated kind, in canonical
	// resource kind order.
	Verdicts []Verdict `json:"verdicts"`

	// Ready is true iff no verdict failed.
	Ready bool `json:"overall_ready"`

	// Warnings holds human-readable degradation lines: one per warning
	// or unknown verdict, plus any run-level degradation such as a
	// requirement resolution cut short by the deadline.
	Warnings []string `json:"warnings,omitempty"`

	// Suggestion names the first failing resource and its shortfall when
	// the machine is not ready. Empty when Ready.
	Suggestion string `json:"suggestion,omitempty"`

	// Platform describes the machine that was probed.
	Platform PlatformInfo `json:"platform"`

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Elapsed is the wall time of the probe and resolve phase.
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// Failures returns the verdicts with StatusFail, in report order.
func (r *Report) Failures() []Verdict {
	var failed []Verdict
	for _, v := range r.Verdicts {
		if v.Status == StatusFail {
			failed = append(failed, v)
		}
	}
	return failed
}

// ErrInvalidQuantity indicates that a resource quantity string could not be
// parsed.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrManifest indicates that a project manifest exists but is malformed.
// Runs abort with exit code 2 when they hit it.
var ErrManifest = errors.New("invalid manifest")

// ErrProjectPath indicates that the project path is missing or unreadable.
// Runs abort with exit code 2 when they hit it.
var ErrProjectPath = errors.New("invalid project path")

// ErrUnknownFormat indicates that a requested output format has no
// registered formatter.
var ErrUnknownFormat = errors.New("unknown format")

// ParseBytes parses a human-readable byte quantity and returns the value in
// bytes. Both SI ("16GB") and IEC ("16GiB") suffixes are accepted, as are
// bare-letter binary forms ("16Gi") and plain byte counts ("1024").
//
// Returns ErrInvalidQuantity when the string cannot be parsed.
func ParseBytes(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidQuantity)
	}

	// Allow "16Gi" to mean "16GiB".
	normalized := s
	if strings.HasSuffix(strings.ToLower(normalized), "i") {
		normalized += "B"
	}

	v, err := humanize.ParseBytes(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return float64(v), nil
}

// ParseCores parses a CPU quantity and returns the core count. Kubernetes
// style strings are accepted: "2", "1.5", and millicore forms like "1500m".
//
// Returns ErrInvalidQuantity when the string cannot be parsed or the value
// is negative.
func ParseCores(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidQuantity)
	}

	cpu, err := k8sresource.NewCPUFromString(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}

	cores := cpu.ToFloat64()
	if cores < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidQuantity, s)
	}
	return cores, nil
}

// FormatBytes converts a byte quantity to a human-readable string using
// binary (IEC) units, e.g. FormatBytes(1536*1024*1024) returns "1.5 GiB".
func FormatBytes(v float64) string {
	if v < 0 {
		v = 0
	}
	return humanize.IBytes(uint64(v))
}

// FormatCores formats a core count, trimming insignificant decimals:
// 8 renders as "8", 1.5 as "1.5".
func FormatCores(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatQuantity formats a quantity in the canonical unit of the kind:
// byte kinds through FormatBytes, CPU through FormatCores with a unit.
func FormatQuantity(kind ResourceKind, v float64) string {
	if kind.IsBytes() {
		return FormatBytes(v)
	}
	cores := FormatCores(v)
	if cores == "1" {
		return "1 core"
	}
	return cores + " cores"
}
