// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package radio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/kortschak/blebattery/advert"
)

var _ Radio = (*Adapter)(nil)

// Adapter is a Radio backed by a tinygo.org/x/bluetooth adapter.
//
// Characteristic writes are sent to the platform, which notifies all
// subscribed centrals of the new value, so Notify only checks the value.
// A shadow copy of each written value is kept to
// serve ReadCharacteristic.
type Adapter struct {
	adapter *bluetooth.Adapter
	post    func(func())
	log     logrus.FieldLogger
	errs    chan error

	mu          sync.Mutex
	enabled     bool
	chars       []*bluetooth.Characteristic // Indexed by Handle-1.
	values      map[Handle][]byte
	conns       map[string]ConnHandle
	nextConn    ConnHandle
	handler     EventHandler
	configured  []byte
	advertising bool
}

// NewAdapter returns a new Adapter using the provided bluetooth adapter.
//
// Radio event handlers are called via post, which must run the functions
// it is given sequentially and never concurrently with other users of
// the Radio. If post is nil, handlers are called directly from the
// bluetooth adapter's callback.
func NewAdapter(adapter *bluetooth.Adapter, post func(func()), log logrus.FieldLogger) *Adapter {
	if post == nil {
		post = func(f func()) { f() }
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Adapter{
		adapter: adapter,
		post:    post,
		log:     log,
		errs:    make(chan error, 1),
		values:  make(map[Handle][]byte),
		conns:   make(map[string]ConnHandle),
	}
}

// Errors returns a channel that receives errors returned by the event
// handler. Only the first unreceived error is retained.
func (a *Adapter) Errors() <-chan error { return a.errs }

// SetActive enables the bluetooth adapter, or stops advertising when on
// is false.
func (a *Adapter) SetActive(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !on {
		// The platform adapter cannot be powered down; stop
		// advertising so that no new centrals can connect.
		return a.stopAdvertising()
	}
	if a.enabled {
		return nil
	}
	err := a.adapter.Enable()
	if err != nil {
		return fmt.Errorf("failed to enable bluetooth: %w", err)
	}
	a.enabled = true
	return nil
}

// RegisterGATTServices adds the services to the adapter and returns the
// handles of their characteristics.
func (a *Adapter) RegisterGATTServices(services []ServiceDesc) ([][]Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	handles := make([][]Handle, len(services))
	for i, sd := range services {
		svc := &bluetooth.Service{UUID: sd.UUID}
		chars := make([]*bluetooth.Characteristic, len(sd.Chars))
		for j, cd := range sd.Chars {
			chars[j] = new(bluetooth.Characteristic)
			svc.Characteristics = append(svc.Characteristics, bluetooth.CharacteristicConfig{
				Handle: chars[j],
				UUID:   cd.UUID,
				Flags:  cd.Flags,
			})
		}
		err := a.adapter.AddService(svc)
		if err != nil {
			return nil, fmt.Errorf("failed to add service %s: %w", sd.UUID, err)
		}
		for _, c := range chars {
			a.chars = append(a.chars, c)
			handles[i] = append(handles[i], Handle(len(a.chars)))
		}
		a.log.WithFields(logrus.Fields{
			"service": sd.UUID.String(),
			"handles": handles[i],
		}).Debug("added gatt service")
	}
	return handles, nil
}

func (a *Adapter) char(h Handle) (*bluetooth.Characteristic, error) {
	if h == 0 || int(h) > len(a.chars) {
		return nil, fmt.Errorf("unknown characteristic handle: %d", h)
	}
	return a.chars[h-1], nil
}

// WriteCharacteristic sets the value of the characteristic with handle h.
func (a *Adapter) WriteCharacteristic(h Handle, value []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, err := a.char(h)
	if err != nil {
		return err
	}
	_, err = c.Write(value)
	if err != nil {
		return fmt.Errorf("failed to write characteristic %d: %w", h, err)
	}
	a.values[h] = slices.Clone(value)
	return nil
}

// ReadCharacteristic returns the last value written to the
// characteristic with handle h.
func (a *Adapter) ReadCharacteristic(h Handle) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.char(h)
	if err != nil {
		return nil, err
	}
	return slices.Clone(a.values[h]), nil
}

// Notify checks a notification of value for the characteristic with
// handle h. The platform has already sent it when the value was written.
func (a *Adapter) Notify(conn ConnHandle, h Handle, value []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.char(h)
	if err != nil {
		return err
	}
	if !bytes.Equal(a.values[h], value) {
		return fmt.Errorf("notify value for characteristic %d does not match written value", h)
	}
	if !slices.Contains(slices.Collect(maps.Values(a.conns)), conn) {
		// The central has gone and its disconnect event may still be
		// waiting to be handled.
		a.log.WithField("conn", conn).Debug("notify for closed connection")
		return nil
	}
	a.log.WithFields(logrus.Fields{
		"conn":   conn,
		"handle": h,
	}).Trace("notification sent by platform on write")
	return nil
}

// Advertise starts advertising payload at the given interval, or stops
// advertising when payload is nil. The payload cannot be changed after
// the first call.
func (a *Adapter) Advertise(interval time.Duration, payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if payload == nil {
		return a.stopAdvertising()
	}
	adv := a.adapter.DefaultAdvertisement()
	if a.configured == nil {
		p, err := advert.Decode(payload)
		if err != nil {
			return fmt.Errorf("invalid advertising payload: %w", err)
		}
		if p.Appearance != 0 {
			a.log.WithField("appearance", p.Appearance).Debug("appearance is set by the platform")
		}
		err = adv.Configure(bluetooth.AdvertisementOptions{
			LocalName:    p.Name,
			ServiceUUIDs: p.Services,
			Interval:     bluetooth.NewDuration(interval),
		})
		if err != nil {
			return fmt.Errorf("failed to configure advertisement: %w", err)
		}
		a.configured = slices.Clone(payload)
	} else if !bytes.Equal(a.configured, payload) {
		return errors.New("advertisement payload cannot be changed once configured")
	}
	// Restart so that each call reissues the advertisement.
	if a.advertising {
		err := adv.Stop()
		if err != nil {
			a.log.WithError(err).Debug("failed to stop advertising before restart")
		}
		a.advertising = false
	}
	err := adv.Start()
	if err != nil {
		return fmt.Errorf("failed to start advertising: %w", err)
	}
	a.advertising = true
	return nil
}

func (a *Adapter) stopAdvertising() error {
	if !a.advertising {
		return nil
	}
	err := a.adapter.DefaultAdvertisement().Stop()
	if err != nil {
		return fmt.Errorf("failed to stop advertising: %w", err)
	}
	a.advertising = false
	return nil
}

// SubscribeEvents installs h as the handler for central connection
// events.
func (a *Adapter) SubscribeEvents(h EventHandler) error {
	a.mu.Lock()
	a.handler = h
	a.mu.Unlock()
	a.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		typ := PublicAddr
		if r, ok := any(device.Address).(interface{ IsRandom() bool }); ok && r.IsRandom() {
			typ = RandomAddr
		}
		a.connectionChanged(device.Address.String(), typ, connected)
	})
	return nil
}

func (a *Adapter) connectionChanged(addr string, typ AddrType, connected bool) {
	a.mu.Lock()
	ev := CentralConnect
	conn, ok := a.conns[addr]
	switch {
	case connected && !ok:
		a.nextConn++
		conn = a.nextConn
		a.conns[addr] = conn
	case !connected && !ok:
		a.mu.Unlock()
		a.log.WithField("addr", addr).Warn("disconnect from unknown central")
		return
	case !connected:
		ev = CentralDisconnect
		delete(a.conns, addr)
	}
	h := a.handler
	a.mu.Unlock()

	if h == nil {
		return
	}
	data := Central{Conn: conn, AddrType: typ, Addr: addr}
	a.post(func() {
		err := h(ev, data)
		if err != nil {
			select {
			case a.errs <- fmt.Errorf("%s event handler: %w", ev, err):
			default:
				a.log.WithError(err).Error("dropped event handler error")
			}
		}
	})
}
