package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/canrun/pkg/canrun/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "canrun [path]",
		Short: "Check whether this machine can run a project",
		Long: `Canrun probes this machine's RAM, CPU, GPU memory, and disk, resolves
the project's resource requirements from its manifest or by inference,
and reports whether the system is ready to run it.

Requirements come from a canrun.yaml at the project root when present.
Without one, canrun infers them from the project tree and its dependency
files (requirements.txt, package.json, go.mod).

Examples:
  canrun                     # Check the current directory
  canrun ~/src/trainer       # Check a specific project
  canrun -f json .           # Machine-readable report
  canrun -v .                # Include probe and requirement evidence
  canrun -i                  # Interactive TUI
  canrun serve               # MCP server over stdio
  canrun config show         # Show configuration`,
		Args:              cobra.MaximumNArgs(1),
		RunE:              runCheck,
		PersistentPreRunE: initializeLogging,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/canrun/config.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "", "report format: text, json, pretty (default: pretty on a terminal, text otherwise)")
	rootCmd.PersistentFlags().Float64("timeout", 0, "run timeout in seconds (0=config default)")
	rootCmd.PersistentFlags().Float64("probe-timeout", 0, "per-probe timeout in seconds (0=config default)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "directory patterns excluded from inference walks")
	rootCmd.PersistentFlags().BoolP("interactive", "i", false, "interactive TUI")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress messages")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "include evidence in reports, debug logs to stderr")

	// Bind flags to viper
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("probe_timeout", rootCmd.PersistentFlags().Lookup("probe-timeout"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("interactive", rootCmd.PersistentFlags().Lookup("interactive"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Set config name and type
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "canrun"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "canrun"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("CANRUN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("project_path", config.DefaultProjectPath)
	viper.SetDefault("exclude", config.DefaultExclusions)
	viper.SetDefault("probes.timeout", config.DefaultProbeTimeout)
	viper.SetDefault("probes.run_timeout", config.DefaultRunTimeout)
	viper.SetDefault("probes.disk_path", config.DefaultDiskPath)
	viper.SetDefault("probes.nvidia_smi_path", "")
	viper.SetDefault("inference.dataset_extensions", config.DefaultDatasetExtensions)
	viper.SetDefault("inference.workers", 0)
	viper.SetDefault("inference.follow_symlinks", false)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.path", "")
	viper.SetDefault("logging.rotation.max_size", "10MB")
	viper.SetDefault("logging.rotation.max_age", 30)
	viper.SetDefault("logging.rotation.max_backups", 5)
	viper.SetDefault("logging.rotation.daily", true)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a progress message to stderr unless quiet mode is
// enabled. Stdout carries only reports.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
