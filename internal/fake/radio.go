// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fake

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kortschak/blebattery/radio"
)

var _ radio.Radio = (*Radio)(nil)

// Radio is a call-recording radio.Radio.
//
// Without stubs, RegisterGATTServices allocates sequential handles
// starting at 1 and ReadCharacteristic returns the last value written
// to the handle.
type Radio struct {
	Recorder

	mu      sync.Mutex
	handler radio.EventHandler
	values  map[radio.Handle][]byte
	next    radio.Handle
}

// NewRadio returns a new Radio.
func NewRadio() *Radio {
	return &Radio{values: make(map[radio.Handle][]byte)}
}

func (r *Radio) SetActive(on bool) error {
	ret, _ := r.Record("SetActive", on)
	return errAt(ret, 0)
}

func (r *Radio) RegisterGATTServices(services []radio.ServiceDesc) ([][]radio.Handle, error) {
	ret, ok := r.Record("RegisterGATTServices", services)
	if ok {
		var h [][]radio.Handle
		if len(ret) != 0 {
			h, _ = ret[0].([][]radio.Handle)
		}
		return h, errAt(ret, 1)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := make([][]radio.Handle, len(services))
	for i, s := range services {
		for range s.Chars {
			r.next++
			handles[i] = append(handles[i], r.next)
		}
	}
	return handles, nil
}

func (r *Radio) WriteCharacteristic(h radio.Handle, value []byte) error {
	value = slices.Clone(value)
	ret, _ := r.Record("WriteCharacteristic", h, value)
	if err := errAt(ret, 0); err != nil {
		return err
	}
	r.mu.Lock()
	r.values[h] = value
	r.mu.Unlock()
	return nil
}

func (r *Radio) ReadCharacteristic(h radio.Handle) ([]byte, error) {
	ret, ok := r.Record("ReadCharacteristic", h)
	if ok {
		var v []byte
		if len(ret) != 0 {
			v, _ = ret[0].([]byte)
		}
		return v, errAt(ret, 1)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.values[h]), nil
}

func (r *Radio) Notify(c radio.ConnHandle, h radio.Handle, value []byte) error {
	ret, _ := r.Record("Notify", c, h, slices.Clone(value))
	return errAt(ret, 0)
}

func (r *Radio) Advertise(interval time.Duration, payload []byte) error {
	ret, _ := r.Record("Advertise", interval, slices.Clone(payload))
	return errAt(ret, 0)
}

// SubscribeEvents records the call without its argument since
// functions cannot be compared.
func (r *Radio) SubscribeEvents(h radio.EventHandler) error {
	ret, _ := r.Record("SubscribeEvents")
	if err := errAt(ret, 0); err != nil {
		return err
	}
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()
	return nil
}

// ErrNoHandler is returned by Emit when no event handler is installed.
var ErrNoHandler = errors.New("no event handler subscribed")

// Emit delivers a radio event to the subscribed handler and returns its
// result.
func (r *Radio) Emit(ev radio.Event, data any) error {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h == nil {
		return ErrNoHandler
	}
	return h(ev, data)
}

// Connect emits a CentralConnect event for the connection c.
func (r *Radio) Connect(c radio.ConnHandle) error {
	return r.Emit(radio.CentralConnect, radio.Central{Conn: c, Addr: fakeAddr(c)})
}

// Disconnect emits a CentralDisconnect event for the connection c.
func (r *Radio) Disconnect(c radio.ConnHandle) error {
	return r.Emit(radio.CentralDisconnect, radio.Central{Conn: c, Addr: fakeAddr(c)})
}

func fakeAddr(c radio.ConnHandle) string {
	return fmt.Sprintf("C0:00:00:00:%02X:%02X", byte(c>>8), byte(c))
}
