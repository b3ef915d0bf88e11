// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package battery

import (
	"fmt"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/blebattery/internal/forkbeard"
)

// Level returns the battery level for the provided Bluetooth device.
func Level(dev *bluetooth.Device) (int, error) {
	batteryDevice, err := forkbeard.DeviceCharacteristic(dev, batteryService, batteryLevelCharacteristic)
	if err != nil {
		return 0, fmt.Errorf("failed to get battery device characteristic: %w", err)
	}
	resp, err := forkbeard.ReadCharacteristic(batteryDevice)
	if err != nil {
		return 0, fmt.Errorf("failed read battery characteristic: %w", err)
	}
	return DecodeLevel(resp)
}

// LevelListener implements handling of battery level notifications.
type LevelListener struct {
	char bluetooth.DeviceCharacteristic
}

// NewLevelListener returns a new LevelListener for the provided Bluetooth
// device. The h function is called with received battery level
// notifications.
func NewLevelListener(dev *bluetooth.Device, h func(int, error)) (*LevelListener, error) {
	char, err := forkbeard.DeviceCharacteristic(dev, batteryService, batteryLevelCharacteristic)
	if err != nil {
		return nil, fmt.Errorf("failed to get battery device characteristic: %w", err)
	}
	err = char.EnableNotifications(func(buf []byte) {
		h(DecodeLevel(buf))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enable battery level notifications: %w", err)
	}
	return &LevelListener{char: char}, nil
}

// Close disables battery level notifications from the connected device.
func (l *LevelListener) Close() error { return l.char.EnableNotifications(nil) }
