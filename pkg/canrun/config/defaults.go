// Package config provides configuration management for the canrun
// readiness analyzer.
package config

// Default configuration values for canrun.
const (
	// DefaultProjectPath is the project path analyzed when none is given.
	DefaultProjectPath = "."

	// DefaultFormat is the report format used when none is specified.
	DefaultFormat = "text"

	// DefaultProbeTimeout bounds a single resource probe.
	DefaultProbeTimeout = "5s"

	// DefaultRunTimeout bounds a whole readiness run.
	DefaultRunTimeout = "15s"

	// DefaultDiskPath is the mount point inspected by the disk probe.
	DefaultDiskPath = "/"

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/canrun"

	// MinWalkWorkers is the floor for the tree walk worker pool.
	// Directory traversal is metadata-bound and benefits from
	// parallelism even on small hosts.
	MinWalkWorkers = 4

	// MaxWalkWorkers caps the tree walk worker pool to avoid excessive
	// context switching on large hosts.
	MaxWalkWorkers = 32
)

// DefaultDatasetExtensions lists file extensions counted as dataset or
// model artifacts when inferring a project's storage footprint.
var DefaultDatasetExtensions = []string{
	".csv",
	".parquet",
	".arrow",
	".npy",
	".npz",
	".h5",
	".hdf5",
	".pt",
	".pth",
	".ckpt",
	".safetensors",
	".onnx",
	".gguf",
	".bin",
	".tfrecord",
	".jsonl",
}

// DefaultExclusions contains directories skipped during project tree walks.
var DefaultExclusions = []string{
	".git",
	"node_modules",
	".venv",
	"venv",
	"__pycache__",
	".mypy_cache",
	".tox",
}
