// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package forkbeard provides helper functions for interacting with
// Bluetooth devices.
package forkbeard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tinygo.org/x/bluetooth"
)

// DeviceCharacteristic returns a specified bluetooth.DeviceCharacteristic
// from a Bluetooth service.
func DeviceCharacteristic(dev *bluetooth.Device, srvID, charID bluetooth.UUID) (bluetooth.DeviceCharacteristic, error) {
	srv, err := dev.DiscoverServices([]bluetooth.UUID{srvID})
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("failed to discover service %s: %w", srvID, err)
	}
	for _, s := range srv {
		char, err := s.DiscoverCharacteristics([]bluetooth.UUID{charID})
		if err != nil {
			return bluetooth.DeviceCharacteristic{}, fmt.Errorf("failed to discover characteristic %s: %w", charID, err)
		}
		if len(char) == 0 {
			break
		}
		return char[0], nil
	}
	return bluetooth.DeviceCharacteristic{}, fmt.Errorf("device characteristic %s not found in service %s", charID, srvID)
}

// ReadCharacteristic reads data from a Bluetooth characteristic.
func ReadCharacteristic(char bluetooth.DeviceCharacteristic) ([]byte, error) {
	mtu, err := char.GetMTU()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain mtu of characteristic: %w", err)
	}
	buf := make([]byte, mtu)
	n, err := char.Read(buf)
	if err != nil && err != io.EOF {
		return buf[:n], fmt.Errorf("failed to read response from characteristic: %w", err)
	}
	return buf[:n], nil
}

// Filter reports whether a scan result is a wanted device.
type Filter func(bluetooth.ScanResult) bool

// Advertising returns a Filter matching devices that advertise the
// service id.
func Advertising(id bluetooth.UUID) Filter {
	return func(r bluetooth.ScanResult) bool {
		return r.AdvertisementPayload.HasServiceUUID(id)
	}
}

// Address returns a Filter matching the device with the given address.
// An empty address matches all devices.
func Address(addr string) Filter {
	return func(r bluetooth.ScanResult) bool {
		return addr == "" || strings.EqualFold(r.Address.String(), addr)
	}
}

// Name returns a Filter matching devices advertising the given local
// name. An empty name matches all devices.
func Name(name string) Filter {
	return func(r bluetooth.ScanResult) bool {
		return name == "" || r.LocalName() == name
	}
}

// All returns a Filter matching devices matched by all of filters.
func All(filters ...Filter) Filter {
	return func(r bluetooth.ScanResult) bool {
		for _, f := range filters {
			if !f(r) {
				return false
			}
		}
		return true
	}
}

// Scan scans with the adapter until a device matching f is found or
// ctx is done.
func Scan(ctx context.Context, adapter *bluetooth.Adapter, f Filter) (bluetooth.ScanResult, error) {
	found := make(chan bluetooth.ScanResult, 1)
	done := make(chan error, 1)
	go func() {
		done <- adapter.Scan(func(adapter *bluetooth.Adapter, r bluetooth.ScanResult) {
			if !f(r) {
				return
			}
			select {
			case found <- r:
			default:
			}
			adapter.StopScan()
		})
	}()
	select {
	case <-ctx.Done():
		adapter.StopScan()
		<-done
		select {
		case r := <-found:
			return r, nil
		default:
			return bluetooth.ScanResult{}, ctx.Err()
		}
	case err := <-done:
		select {
		case r := <-found:
			return r, nil
		default:
		}
		if err == nil {
			err = errors.New("scan stopped")
		}
		return bluetooth.ScanResult{}, fmt.Errorf("failed to scan: %w", err)
	}
}
