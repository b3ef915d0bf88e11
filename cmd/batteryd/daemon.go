// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kortschak/blebattery/battery"
	"github.com/kortschak/blebattery/internal/config"
	"github.com/kortschak/blebattery/radio"
	"github.com/kortschak/blebattery/voltage"
)

// run serves the battery service on r until ctx is done or a fault
// occurs. Functions received on posted and sensor refreshes are run
// sequentially on the calling goroutine. Errors received on faults
// terminate the service.
func run(ctx context.Context, cfg *config.Config, r radio.Radio, adc voltage.ADC, posted <-chan func(), faults <-chan error, log logrus.FieldLogger) error {
	svc, err := battery.NewService(r,
		battery.WithLogger(log),
		battery.WithAdvertisement(cfg.Device.Name, cfg.Device.AdvertiseInterval, cfg.Device.Appearance),
		battery.WithInitialLevel(float64(cfg.Battery.InitialLevel)),
	)
	if err != nil {
		return err
	}
	err = svc.RegisterServices()
	if err != nil {
		return err
	}
	reader, err := voltage.NewReader(adc, cfg.Sensor.UpperLimit)
	if err != nil {
		return err
	}
	err = svc.Start()
	if err != nil {
		return err
	}
	log.Info("advertising")

	tick := time.NewTicker(cfg.Sensor.RefreshInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return svc.Stop()
		case f := <-posted:
			f()
		case err := <-faults:
			return errors.Join(err, svc.Stop())
		case <-tick.C:
			err := reader.Refresh(svc)
			if err != nil {
				return errors.Join(fmt.Errorf("failed to refresh battery level: %w", err), svc.Stop())
			}
			if raw, ok := reader.LastRead(); ok {
				log.WithField("raw", raw).Trace("sensor read")
			}
		}
	}
}
