// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kortschak/blebattery/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration as YAML.

The configuration is read from --config, or from the default config path
if it exists. Missing values are filled with defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, err := loadConfig(configPath, logLevel, flagLogger())
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	err = enc.Encode(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// loadConfig returns the configuration at path, or at the default path
// when path is empty, falling back to defaults when no config file
// exists. A non-empty level overrides the configured log level. The
// returned config has been validated.
func loadConfig(path, level string, log logrus.FieldLogger) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	default:
		path = config.DefaultConfigPath()
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, err = config.Load(path)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
			log.WithField("path", path).Debug("config loaded")
		} else {
			log.Debug("no config file found, using defaults")
			cfg = config.Default()
		}
	}
	if level != "" {
		cfg.LogLevel = level
	}
	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
