package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/canrun/pkg/canrun/config"
	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// initializeLogging is the PersistentPreRunE hook. It ensures the XDG
// directories exist and brings up the logging system before any command
// runs, so every component logger writes to the rotating file sink.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("ensuring config directory: %w", err)
	}
	if err := config.EnsureStateDir(); err != nil {
		return fmt.Errorf("ensuring state directory: %w", err)
	}

	level := viper.GetString("logging.level")
	if level == "" {
		level = "info"
	}

	cfg := logging.Config{
		Level: level,
		Path:  viper.GetString("logging.path"),
		Rotation: parseRotationConfig(config.RotationConfig{
			MaxSize:    viper.GetString("logging.rotation.max_size"),
			MaxAge:     viper.GetInt("logging.rotation.max_age"),
			MaxBackups: viper.GetInt("logging.rotation.max_backups"),
			Daily:      viper.GetBool("logging.rotation.daily"),
		}),
		Components: viper.GetStringMapString("logging.components"),
		// The TUI owns the screen; console logging would corrupt it.
		TUIMode: viper.GetBool("interactive"),
	}
	if getVerbose() {
		cfg.Level = "debug"
		cfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(cfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// parseRotationConfig converts the config representation, with its
// human-readable size string, into the logging package's byte-valued one.
// Empty or unparseable sizes fall back to 10 MiB.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	maxSize := 10 * types.MiB
	if rc.MaxSize != "" {
		if parsed, err := types.ParseBytes(rc.MaxSize); err == nil && parsed > 0 {
			maxSize = int64(parsed)
		}
	}

	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
}
