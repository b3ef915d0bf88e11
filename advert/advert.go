// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package advert implements encoding and decoding of legacy BLE
// advertising data payloads carrying a device name, 16-bit service
// UUIDs and a GAP appearance value.
package advert

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux/adv"
	"tinygo.org/x/bluetooth"
)

// AD types not constructed by go-ble.
// https://www.bluetooth.com/specifications/assigned-numbers/ section 2.3.
const (
	allUUID16Type  = 0x03
	appearanceType = 0x19
)

// MaxLen is the maximum length of a legacy advertising payload.
const MaxLen = adv.MaxEIRPacketLength

// ErrNotFit is returned when a payload does not fit in MaxLen bytes.
var ErrNotFit = errors.New("advertising payload too long")

// Payload is the content of an advertising data payload.
type Payload struct {
	Name       string
	Services   []bluetooth.UUID
	Appearance uint16 // Zero is not encoded.
}

// Encode returns the advertising data encoding of p. Only 16-bit
// service UUIDs are supported and they are encoded as a single complete
// list.
func (p Payload) Encode() ([]byte, error) {
	fields := []adv.Field{adv.Flags(adv.FlagGeneralDiscoverable | adv.FlagLEOnly)}
	if len(p.Services) != 0 {
		var uuids []byte
		for _, u := range p.Services {
			if !u.Is16Bit() {
				return nil, fmt.Errorf("service %s is not a 16-bit uuid", u)
			}
			uuids = append(uuids, ble.UUID16(uint16(u[3]))...)
		}
		fields = append(fields, field(allUUID16Type, uuids))
	}
	if p.Name != "" {
		fields = append(fields, adv.CompleteName(p.Name))
	}
	if p.Appearance != 0 {
		fields = append(fields, field(appearanceType, binary.LittleEndian.AppendUint16(nil, p.Appearance)))
	}
	pkt, err := adv.NewPacket(fields...)
	if err != nil {
		if errors.Is(err, adv.ErrNotFit) {
			return nil, ErrNotFit
		}
		return nil, fmt.Errorf("failed to build advertising packet: %w", err)
	}
	return pkt.Bytes(), nil
}

// field returns an AD structure of the given type holding b.
func field(typ byte, b []byte) adv.Field {
	return adv.Raw(append([]byte{byte(len(b) + 1), typ}, b...))
}

// Decode returns the Payload held in the advertising data b.
func Decode(b []byte) (Payload, error) {
	if len(b) > MaxLen {
		return Payload{}, ErrNotFit
	}
	err := validate(b)
	if err != nil {
		return Payload{}, err
	}
	pkt := adv.NewRawPacket(b)
	p := Payload{Name: pkt.LocalName()}
	for _, u := range pkt.UUIDs() {
		if u.Len() != 2 {
			continue
		}
		p.Services = append(p.Services, bluetooth.New16BitUUID(binary.LittleEndian.Uint16(u)))
	}
	if a := pkt.Field(appearanceType); len(a) == 2 {
		p.Appearance = binary.LittleEndian.Uint16(a)
	}
	return p, nil
}

// validate checks that b is a well-formed sequence of AD structures.
func validate(b []byte) error {
	for len(b) != 0 {
		l := int(b[0])
		if l == 0 {
			// Early termination is allowed by Core Spec Vol 3 Part C 11.
			return nil
		}
		if len(b) < l+1 {
			return fmt.Errorf("truncated advertising field: need %d bytes, have %d", l+1, len(b))
		}
		b = b[l+1:]
	}
	return nil
}
