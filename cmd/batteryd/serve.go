// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"tinygo.org/x/bluetooth"

	"github.com/kortschak/blebattery/radio"
	"github.com/kortschak/blebattery/voltage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Advertise the battery service",
	Long: `Advertise the battery service and serve the battery level.

The voltage sensor is sampled every sensor.refresh_interval and the
battery level is updated when the sample changes. The service runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath, logLevel, flagLogger())
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	log := cfg.NewLogger(os.Stderr)
	log.WithFields(logrus.Fields{
		"name":     cfg.Device.Name,
		"sensor":   cfg.Sensor.Path,
		"interval": cfg.Sensor.RefreshInterval,
	}).Info("starting battery service")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	posted := make(chan func())
	post := func(f func()) {
		select {
		case posted <- f:
		case <-ctx.Done():
		}
	}
	adapter := radio.NewAdapter(bluetooth.DefaultAdapter, post, log)

	err = run(ctx, cfg, adapter, voltage.Sysfs{Path: cfg.Sensor.Path}, posted, adapter.Errors(), log)
	if err != nil {
		log.WithError(err).Error("battery service failed")
		return err
	}
	log.Info("battery service stopped")
	return nil
}
