package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// ProbesConfig configures the resource probes.
type ProbesConfig struct {
	// Timeout bounds a single probe.
	Timeout time.Duration `mapstructure:"timeout"`

	// RunTimeout bounds the whole probe and resolve phase.
	RunTimeout time.Duration `mapstructure:"run_timeout"`

	// DiskPath is the mount point the disk probe inspects.
	DiskPath string `mapstructure:"disk_path"`

	// NvidiaSMIPath overrides the nvidia-smi binary location.
	// Empty means look it up on PATH.
	NvidiaSMIPath string `mapstructure:"nvidia_smi_path"`
}

// InferenceConfig configures project requirement inference.
type InferenceConfig struct {
	// DatasetExtensions lists file extensions counted as dataset artifacts.
	DatasetExtensions []string `mapstructure:"dataset_extensions"`

	// Workers is the number of concurrent tree walk workers.
	Workers int `mapstructure:"workers"`

	// FollowSymlinks enables following symbolic links during walks.
	FollowSymlinks bool `mapstructure:"follow_symlinks"`
}

// Config represents the application configuration.
type Config struct {
	ProjectPath string          `mapstructure:"project_path"`
	Format      string          `mapstructure:"format"`
	Exclude     []string        `mapstructure:"exclude"`
	Probes      ProbesConfig    `mapstructure:"probes"`
	Inference   InferenceConfig `mapstructure:"inference"`
	Logging     LoggingConfig   `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/canrun/config.yaml
//   - $HOME/.config/canrun/config.yaml
//
// Environment variables are prefixed with CANRUN_ (e.g., CANRUN_FORMAT).
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "canrun"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "canrun"))

	// Set environment variable prefix and enable auto env binding
	v.SetEnvPrefix("CANRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("project_path", DefaultProjectPath)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("exclude", DefaultExclusions)

	// Probe defaults
	v.SetDefault("probes.timeout", DefaultProbeTimeout)
	v.SetDefault("probes.run_timeout", DefaultRunTimeout)
	v.SetDefault("probes.disk_path", DefaultDiskPath)
	v.SetDefault("probes.nvidia_smi_path", "")

	// Inference defaults
	v.SetDefault("inference.dataset_extensions", DefaultDatasetExtensions)
	v.SetDefault("inference.workers", 0)
	v.SetDefault("inference.follow_symlinks", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"probe":     "info",
		"manifest":  "info",
		"readiness": "info",
		"mcp":       "info",
		"tui":       "info",
	})

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in the project path if present
	if strings.HasPrefix(cfg.ProjectPath, "~") {
		cfg.ProjectPath = filepath.Join(homeDir, cfg.ProjectPath[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path, expanding ~ to the user's home directory.
func ConfigDir() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "canrun"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "canrun"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Canrun Readiness Analyzer Configuration

# Default project path to analyze when none is specified
project_path: %s

# Report format: text, json, pretty
format: %s

# Directories skipped during project tree walks
exclude:
  - .git
  - node_modules
  - .venv
  - venv
  - __pycache__

# Resource probe settings
probes:
  # Upper bound for a single probe
  timeout: %s
  # Upper bound for the whole run
  run_timeout: %s
  # Mount point inspected by the disk probe
  disk_path: %s
  # Path to nvidia-smi (empty means look it up on PATH)
  nvidia_smi_path: ""

# Requirement inference settings
inference:
  # Concurrent tree walk workers (0 sizes the pool from the CPU count)
  workers: 0
  # Follow symbolic links during walks
  follow_symlinks: false

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/canrun/canrun.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    probe: info
    manifest: info
    readiness: info
    mcp: info
    tui: info
`, DefaultProjectPath, DefaultFormat, DefaultProbeTimeout, DefaultRunTimeout, DefaultDiskPath)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/canrun/ (reserved for future use).
func DataDir() string {
	return filepath.Join(xdg.DataHome, "canrun")
}

// StateDir returns $XDG_STATE_HOME/canrun/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "canrun")
}

// CacheDir returns $XDG_CACHE_HOME/canrun/ (reserved for future use).
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "canrun")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "canrun.log")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}
