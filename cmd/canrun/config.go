package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/canrun/pkg/canrun/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage canrun configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/canrun/config.yaml (if set)
  2. ~/.config/canrun/config.yaml

Environment variables can override config file settings using the CANRUN_ prefix:
  CANRUN_FORMAT=json
  CANRUN_PROBES_DISK_PATH=/data
  CANRUN_EXCLUDE=.git,node_modules`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Print the effective configuration after merging defaults, the config file, and environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in an editor, creating the default file
first if none exists. The editor comes from $VISUAL, then $EDITOR,
then vi.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Write the commented default configuration file unless one is already present.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Print the location canrun reads its configuration from.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd, configEditCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		// Fall back to defaults so the command still prints something useful.
		cfg = &config.Config{
			ProjectPath: config.DefaultProjectPath,
			Format:      config.DefaultFormat,
			Exclude:     config.DefaultExclusions,
		}
		cfg.Probes.DiskPath = config.DefaultDiskPath
		cfg.Inference.DatasetExtensions = config.DefaultDatasetExtensions
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("project_path:           %s\n", cfg.ProjectPath)
	fmt.Printf("format:                 %s\n", cfg.Format)
	fmt.Printf("exclude:                %v\n", cfg.Exclude)
	fmt.Printf("probes.timeout:         %s\n", cfg.Probes.Timeout)
	fmt.Printf("probes.run_timeout:     %s\n", cfg.Probes.RunTimeout)
	fmt.Printf("probes.disk_path:       %s\n", cfg.Probes.DiskPath)
	fmt.Printf("probes.nvidia_smi_path: %s\n", cfg.Probes.NvidiaSMIPath)
	fmt.Printf("inference.workers:      %d\n", config.WalkWorkers(cfg.Inference.Workers))
	fmt.Printf("inference.follow_symlinks: %t\n", cfg.Inference.FollowSymlinks)
	fmt.Printf("inference.dataset_extensions: %s\n", strings.Join(cfg.Inference.DatasetExtensions, ","))
	fmt.Printf("logging.level:          %s\n", cfg.Logging.Level)

	// Show any environment overrides
	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"CANRUN_PROJECT_PATH",
		"CANRUN_FORMAT",
		"CANRUN_EXCLUDE",
		"CANRUN_PROBES_TIMEOUT",
		"CANRUN_PROBES_RUN_TIMEOUT",
		"CANRUN_PROBES_DISK_PATH",
		"CANRUN_PROBES_NVIDIA_SMI_PATH",
		"CANRUN_INFERENCE_WORKERS",
		"CANRUN_LOGGING_LEVEL",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor, writing the default
// file first so the editor never opens on a missing path.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", editor, err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'canrun config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	fmt.Println(configPath)
	return nil
}

func configFilePath() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
