// Package cmdutil holds shared plumbing for the report-producing commands.
package cmdutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BaseCommandConfig holds common configuration for report commands
type BaseCommandConfig struct {
	OutputDir  string
	ConfigKey  string
	JSONOutput string
	WriteJSON  bool
}

// SetupOutputDir resolves where a command's outputs land and creates the
// directories. The flag wins, then <configkey>.output from config, then the
// config key itself as a subdirectory of the base output directory.
func SetupOutputDir(cfg *BaseCommandConfig) error {
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = viper.GetString(cfg.ConfigKey + ".output")
	}
	if outputDir == "" && cfg.ConfigKey != "" {
		outputDir = cfg.ConfigKey
	}

	baseDir := viper.GetString("outputdir")
	if baseDir == "" {
		baseDir = "."
	}
	cfg.OutputDir = filepath.Clean(filepath.Join(baseDir, outputDir))

	// JSON lands next to the report unless a path was given
	if cfg.WriteJSON && cfg.JSONOutput == "" {
		cfg.JSONOutput = filepath.Clean(filepath.Join(cfg.OutputDir, cfg.ConfigKey+".json"))
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if cfg.WriteJSON {
		if err := os.MkdirAll(filepath.Dir(cfg.JSONOutput), 0755); err != nil {
			return fmt.Errorf("failed to create JSON output directory: %w", err)
		}
	}

	return nil
}
