// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the battery peripheral configuration and its
// defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"tinygo.org/x/bluetooth"

	"github.com/kortschak/blebattery/advert"
)

// Peripheral defaults.
const (
	DefaultName              = "micropython-esp32"
	DefaultAppearance        = 3264
	DefaultAdvertiseInterval = 500 * time.Millisecond
	DefaultInitialLevel      = 50
	DefaultSensorPath        = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"
	DefaultUpperLimit        = 511
	DefaultRefreshInterval   = 2 * time.Second
	DefaultLogLevel          = "info"
)

// Config holds all peripheral configuration.
type Config struct {
	Device   DeviceConfig  `yaml:"device"`
	Battery  BatteryConfig `yaml:"battery"`
	Sensor   SensorConfig  `yaml:"sensor"`
	LogLevel string        `yaml:"log_level"`
}

// DeviceConfig holds advertising settings.
type DeviceConfig struct {
	Name              string        `yaml:"name"`
	Appearance        uint16        `yaml:"appearance"`
	AdvertiseInterval time.Duration `yaml:"advertise_interval"`
}

// BatteryConfig holds battery service settings.
type BatteryConfig struct {
	InitialLevel int `yaml:"initial_level"` // percent
}

// SensorConfig holds voltage sampling settings.
type SensorConfig struct {
	Path            string        `yaml:"path"`
	UpperLimit      int           `yaml:"upper_limit"` // raw sample for 100%
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "blebattery")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:              DefaultName,
			Appearance:        DefaultAppearance,
			AdvertiseInterval: DefaultAdvertiseInterval,
		},
		Battery: BatteryConfig{
			InitialLevel: DefaultInitialLevel,
		},
		Sensor: SensorConfig{
			Path:            DefaultSensorPath,
			UpperLimit:      DefaultUpperLimit,
			RefreshInterval: DefaultRefreshInterval,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in sensor.path is expanded to the user's home
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Sensor.Path = expandTilde(cfg.Sensor.Path)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Device.Name == "" {
		return fmt.Errorf("device.name must not be empty")
	}

	_, err := advert.Payload{
		Name:       c.Device.Name,
		Services:   []bluetooth.UUID{bluetooth.New16BitUUID(0x180f)},
		Appearance: c.Device.Appearance,
	}.Encode()
	if err != nil {
		return fmt.Errorf("device.name %q does not fit in the advertising payload: %w", c.Device.Name, err)
	}

	// BLE advertising intervals are 20ms to 10.24s.
	if c.Device.AdvertiseInterval < 20*time.Millisecond || c.Device.AdvertiseInterval > 10240*time.Millisecond {
		return fmt.Errorf("device.advertise_interval must be between 20ms and 10.24s, got %s", c.Device.AdvertiseInterval)
	}

	if c.Battery.InitialLevel < 0 || c.Battery.InitialLevel > 100 {
		return fmt.Errorf("battery.initial_level must be between 0 and 100, got %d", c.Battery.InitialLevel)
	}

	if c.Sensor.Path == "" {
		return fmt.Errorf("sensor.path must not be empty")
	}

	if c.Sensor.UpperLimit <= 0 {
		return fmt.Errorf("sensor.upper_limit must be > 0")
	}

	if c.Sensor.RefreshInterval <= 0 {
		return fmt.Errorf("sensor.refresh_interval must be > 0")
	}

	if _, err = logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// NewLogger returns a logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
