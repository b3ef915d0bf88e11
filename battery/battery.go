// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package battery implements the standard 180f Bluetooth battery
// service, both as a GATT server exposing a device's battery level and
// as a client reading the level of a remote device.
//
// https://www.bluetooth.com/specifications/specs/battery-service/
package battery

import (
	"errors"
	"math"

	"tinygo.org/x/bluetooth"
)

const (
	ServiceID             = "180f"
	LevelCharacteristicID = "2a19"
)

var (
	batteryService             = must(bluetooth.ParseUUID(ServiceID))
	batteryLevelCharacteristic = must(bluetooth.ParseUUID(LevelCharacteristicID))
)

// ServiceUUID returns the UUID of the battery service.
func ServiceUUID() bluetooth.UUID { return batteryService }

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// ErrEmptyValue is returned when a battery level value holds no data.
var ErrEmptyValue = errors.New("empty battery level value")

// EncodeLevel returns the wire encoding of the battery level percentage
// p. The value is rounded to the nearest integer and clamped to [0, 100].
// NaN encodes as zero.
func EncodeLevel(p float64) byte {
	p = math.Round(p)
	switch {
	case !(p > 0): // Also catches NaN.
		return 0
	case p > 100:
		return 100
	}
	return byte(p)
}

// DecodeLevel returns the battery level percentage held in the wire
// value b.
func DecodeLevel(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyValue
	}
	return int(b[0]), nil
}
