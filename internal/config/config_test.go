// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Device.Name != "micropython-esp32" {
		t.Errorf("Device.Name = %q, want %q", cfg.Device.Name, "micropython-esp32")
	}
	if cfg.Device.Appearance != 3264 {
		t.Errorf("Device.Appearance = %d, want 3264", cfg.Device.Appearance)
	}
	if cfg.Device.AdvertiseInterval != 500*time.Millisecond {
		t.Errorf("Device.AdvertiseInterval = %s, want 500ms", cfg.Device.AdvertiseInterval)
	}
	if cfg.Battery.InitialLevel != 50 {
		t.Errorf("Battery.InitialLevel = %d, want 50", cfg.Battery.InitialLevel)
	}
	if cfg.Sensor.UpperLimit != 511 {
		t.Errorf("Sensor.UpperLimit = %d, want 511", cfg.Sensor.UpperLimit)
	}
	if cfg.Sensor.RefreshInterval != 2*time.Second {
		t.Errorf("Sensor.RefreshInterval = %s, want 2s", cfg.Sensor.RefreshInterval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
device:
  name: bat-01
  appearance: 0
  advertise_interval: 1s
battery:
  initial_level: 75
sensor:
  path: /tmp/capacity
  upper_limit: 100
  refresh_interval: 30s
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		Device: DeviceConfig{
			Name:              "bat-01",
			Appearance:        0,
			AdvertiseInterval: time.Second,
		},
		Battery: BatteryConfig{InitialLevel: 75},
		Sensor: SensorConfig{
			Path:            "/tmp/capacity",
			UpperLimit:      100,
			RefreshInterval: 30 * time.Second,
		},
		LogLevel: "debug",
	}
	if *cfg != *want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadPartial(t *testing.T) {
	yamlContent := `
sensor:
  upper_limit: 4095
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sensor.UpperLimit != 4095 {
		t.Errorf("Sensor.UpperLimit = %d, want 4095", cfg.Sensor.UpperLimit)
	}
	if cfg.Sensor.Path != DefaultSensorPath {
		t.Errorf("Sensor.Path = %q, want default %q", cfg.Sensor.Path, DefaultSensorPath)
	}
	if cfg.Device.Name != DefaultName {
		t.Errorf("Device.Name = %q, want default %q", cfg.Device.Name, DefaultName)
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	yamlContent := `
sensor:
  path: ~/sensor/raw
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := filepath.Join(home, "sensor/raw")
	if cfg.Sensor.Path != expected {
		t.Errorf("Sensor.Path = %q, want %q", cfg.Sensor.Path, expected)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("sensor: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	_, err := Load(cfgPath)
	if err == nil {
		t.Error("Load() should return error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			modify: func(c *Config) {},
		},
		{
			name:    "empty name",
			modify:  func(c *Config) { c.Device.Name = "" },
			wantErr: "device.name",
		},
		{
			name:    "name too long for advertising",
			modify:  func(c *Config) { c.Device.Name = strings.Repeat("x", 21) },
			wantErr: "device.name",
		},
		{
			name: "long name without appearance",
			modify: func(c *Config) {
				c.Device.Name = strings.Repeat("x", 21)
				c.Device.Appearance = 0
			},
		},
		{
			name:    "interval too short",
			modify:  func(c *Config) { c.Device.AdvertiseInterval = time.Millisecond },
			wantErr: "device.advertise_interval",
		},
		{
			name:    "interval too long",
			modify:  func(c *Config) { c.Device.AdvertiseInterval = time.Minute },
			wantErr: "device.advertise_interval",
		},
		{
			name:    "initial level negative",
			modify:  func(c *Config) { c.Battery.InitialLevel = -1 },
			wantErr: "battery.initial_level",
		},
		{
			name:    "initial level over 100",
			modify:  func(c *Config) { c.Battery.InitialLevel = 101 },
			wantErr: "battery.initial_level",
		},
		{
			name:    "empty sensor path",
			modify:  func(c *Config) { c.Sensor.Path = "" },
			wantErr: "sensor.path",
		},
		{
			name:    "zero upper limit",
			modify:  func(c *Config) { c.Sensor.UpperLimit = 0 },
			wantErr: "sensor.upper_limit",
		},
		{
			name:    "zero refresh interval",
			modify:  func(c *Config) { c.Sensor.RefreshInterval = 0 },
			wantErr: "sensor.refresh_interval",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := yaml.Marshal(Default())
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if got != *Default() {
		t.Errorf("round trip = %+v, want %+v", got, *Default())
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("logger level = %s, want warn", logger.GetLevel())
	}
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Errorf("info message logged at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn message not logged: %q", buf.String())
	}
}
