// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The batteryd command exposes a device's battery level to Bluetooth LE
// centrals using the standard battery service.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "batteryd",
	Short: "Bluetooth LE battery service peripheral",
	Long: `Bluetooth LE battery service peripheral.

batteryd advertises the standard battery service and keeps the battery
level characteristic up to date from a voltage sensor, notifying
connected centrals when the level changes.`,
}

var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/blebattery/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level overriding the config (debug, info, warn, error)")
}

// flagLogger returns a logger for use before the configuration is
// loaded, at the level given by --log-level.
func flagLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(logLevel)
	if err == nil {
		log.SetLevel(level)
	}
	return log
}
