// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package radio defines the capability set a BLE peripheral needs from
// the platform radio, and provides an implementation of it on top of
// tinygo.org/x/bluetooth.
//
// Event handlers registered with a Radio are called from the platform's
// callback context. Implementations must never run two handlers, or a
// handler and any other serialized callback, at the same time.
package radio

import (
	"time"

	"tinygo.org/x/bluetooth"
)

// Radio is the set of operations a GATT server uses to drive the
// platform BLE radio.
type Radio interface {
	// SetActive powers the radio on or off.
	SetActive(bool) error

	// RegisterGATTServices registers the provided services and returns,
	// for each service in order, the value handles of its characteristics
	// in declaration order.
	RegisterGATTServices([]ServiceDesc) ([][]Handle, error)

	// WriteCharacteristic sets the local value of a characteristic.
	WriteCharacteristic(Handle, []byte) error

	// ReadCharacteristic returns the local value of a characteristic.
	ReadCharacteristic(Handle) ([]byte, error)

	// Notify sends a characteristic value notification to a connected
	// central.
	Notify(ConnHandle, Handle, []byte) error

	// Advertise starts advertising the raw advertising data payload at
	// the given interval. A nil payload stops advertising.
	Advertise(interval time.Duration, payload []byte) error

	// SubscribeEvents installs the radio event handler, replacing any
	// previously installed handler.
	SubscribeEvents(EventHandler) error
}

// EventHandler is called for radio events. The type of data depends on
// the event; for CentralConnect and CentralDisconnect it is a Central.
// A returned error is a fault of the handler and is reported by the
// Radio implementation to its owner.
type EventHandler func(ev Event, data any) error

// Handle is a characteristic value handle allocated by the radio.
type Handle uint16

// ConnHandle identifies a connection to a central.
type ConnHandle uint16

// AddrType is a BLE address type.
type AddrType uint8

const (
	PublicAddr AddrType = 0
	RandomAddr AddrType = 1
)

// Central is the event data of connection state events.
type Central struct {
	Conn     ConnHandle
	AddrType AddrType
	Addr     string
}

// ServiceDesc describes a GATT service to register.
type ServiceDesc struct {
	UUID  bluetooth.UUID
	Chars []CharDesc
}

// CharDesc describes a characteristic of a GATT service.
type CharDesc struct {
	UUID  bluetooth.UUID
	Flags bluetooth.CharacteristicPermissions
}

// Event is a radio event kind. Values are single bits so that sets of
// events can be expressed as masks.
type Event uint16

//go:generate go tool golang.org/x/tools/cmd/stringer -type Event
const (
	CentralConnect            Event = 1 << 0
	CentralDisconnect         Event = 1 << 1
	GATTSWrite                Event = 1 << 2
	GATTSReadRequest          Event = 1 << 3
	ScanResult                Event = 1 << 4
	ScanComplete              Event = 1 << 5
	PeripheralConnect         Event = 1 << 6
	PeripheralDisconnect      Event = 1 << 7
	GATTCServiceResult        Event = 1 << 8
	GATTCCharacteristicResult Event = 1 << 9
	GATTCDescriptorResult     Event = 1 << 10
	GATTCReadResult           Event = 1 << 11
	GATTCWriteStatus          Event = 1 << 12
	GATTCNotify               Event = 1 << 13
	GATTCIndicate             Event = 1 << 14
)
