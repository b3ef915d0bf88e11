// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package battery

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/kortschak/blebattery/advert"
	"github.com/kortschak/blebattery/internal/config"
	"github.com/kortschak/blebattery/radio"
)

// State is the advertising state of a Service.
type State int

//go:generate go tool golang.org/x/tools/cmd/stringer -type State
const (
	Unregistered State = iota
	Idle
	Advertising
)

// ErrRegistered is returned by RegisterServices when the service has
// already been registered with the radio.
var ErrRegistered = errors.New("battery service already registered")

// Services returns the GATT service table of the battery service: a
// single readable and notifiable battery level characteristic.
func Services() []radio.ServiceDesc {
	return []radio.ServiceDesc{{
		UUID: batteryService,
		Chars: []radio.CharDesc{{
			UUID:  batteryLevelCharacteristic,
			Flags: bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
		}},
	}}
}

// Service is a GATT battery service server.
//
// A Service is not safe for concurrent use. Its methods and the radio
// event handler it installs must be called from a single serialized
// context, as provided by interrupt handlers on a single core or by a
// single dispatching goroutine.
type Service struct {
	radio radio.Radio
	log   logrus.FieldLogger

	name       string
	interval   time.Duration
	appearance uint16
	initial    byte

	state      State
	registered bool
	level      radio.Handle
	centrals   map[radio.ConnHandle]struct{}
}

// Option is a Service configuration option.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAdvertisement sets the advertised device name, advertising
// interval and GAP appearance.
func WithAdvertisement(name string, interval time.Duration, appearance uint16) Option {
	return func(s *Service) {
		s.name = name
		s.interval = interval
		s.appearance = appearance
	}
}

// WithInitialLevel sets the battery level percentage written when the
// service is registered.
func WithInitialLevel(p float64) Option {
	return func(s *Service) {
		s.initial = EncodeLevel(p)
	}
}

// NewService returns a new battery Service using the provided radio. The
// radio is activated and the service's event handler is subscribed to
// radio events. RegisterServices must be called before the battery
// level can be used.
func NewService(r radio.Radio, opts ...Option) (*Service, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Service{
		radio:      r,
		log:        discard,
		name:       config.DefaultName,
		interval:   config.DefaultAdvertiseInterval,
		appearance: config.DefaultAppearance,
		initial:    config.DefaultInitialLevel,
		centrals:   make(map[radio.ConnHandle]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	err := r.SetActive(true)
	if err != nil {
		return nil, fmt.Errorf("failed to activate radio: %w", err)
	}
	err = r.SubscribeEvents(s.handleEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to radio events: %w", err)
	}
	return s, nil
}

// RegisterServices registers the battery service with the radio and
// writes the initial battery level. It must be called exactly once.
func (s *Service) RegisterServices() error {
	if s.registered {
		return ErrRegistered
	}
	handles, err := s.radio.RegisterGATTServices(Services())
	if err != nil {
		return fmt.Errorf("failed to register battery service: %w", err)
	}
	if len(handles) != 1 || len(handles[0]) != 1 {
		return fmt.Errorf("unexpected characteristic handles for battery service: %v", handles)
	}
	s.level = handles[0][0]
	s.registered = true
	if s.state == Unregistered {
		s.state = Idle
	}
	s.log.WithField("handle", s.level).Debug("registered battery service")
	err = s.radio.WriteCharacteristic(s.level, []byte{s.initial})
	if err != nil {
		return fmt.Errorf("failed to write initial battery level: %w", err)
	}
	return nil
}

// Start starts advertising the battery service. It may be called
// repeatedly; each call reissues the advertising command.
func (s *Service) Start() error {
	payload, err := advert.Payload{
		Name:       s.name,
		Services:   []bluetooth.UUID{batteryService},
		Appearance: s.appearance,
	}.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode advertising payload: %w", err)
	}
	err = s.radio.Advertise(s.interval, payload)
	if err != nil {
		return fmt.Errorf("failed to start advertising: %w", err)
	}
	s.state = Advertising
	s.log.WithFields(logrus.Fields{
		"name":     s.name,
		"interval": s.interval,
	}).Debug("advertising")
	return nil
}

// Stop stops advertising.
func (s *Service) Stop() error {
	err := s.radio.Advertise(0, nil)
	if err != nil {
		return fmt.Errorf("failed to stop advertising: %w", err)
	}
	if s.registered {
		s.state = Idle
	} else {
		s.state = Unregistered
	}
	s.log.Debug("stopped advertising")
	return nil
}

// State returns the current state of the service.
func (s *Service) State() State { return s.state }

// SetLevelPercentage sets the battery level to p percent and notifies
// all connected centrals. The level is rounded to the nearest integer
// and clamped to [0, 100].
func (s *Service) SetLevelPercentage(p float64) error {
	s.mustBeRegistered()
	v := []byte{EncodeLevel(p)}
	err := s.radio.WriteCharacteristic(s.level, v)
	if err != nil {
		return fmt.Errorf("failed to write battery level: %w", err)
	}
	for _, c := range s.Centrals() {
		err = s.radio.Notify(c, s.level, v)
		if err != nil {
			return fmt.Errorf("failed to notify central %d: %w", c, err)
		}
	}
	s.log.WithFields(logrus.Fields{
		"level":    v[0],
		"centrals": len(s.centrals),
	}).Debug("battery level updated")
	return nil
}

// LevelPercentage returns the current battery level percentage.
func (s *Service) LevelPercentage() (int, error) {
	s.mustBeRegistered()
	v, err := s.radio.ReadCharacteristic(s.level)
	if err != nil {
		return 0, fmt.Errorf("failed to read battery level: %w", err)
	}
	return DecodeLevel(v)
}

// ConnectedCentrals returns the number of connected centrals.
func (s *Service) ConnectedCentrals() int { return len(s.centrals) }

// Centrals returns the connection handles of the connected centrals in
// ascending order.
func (s *Service) Centrals() []radio.ConnHandle {
	return slices.Sorted(maps.Keys(s.centrals))
}

func (s *Service) mustBeRegistered() {
	if !s.registered {
		panic("battery: level characteristic used before RegisterServices")
	}
}

// handleEvent is the radio event handler. Advertising is restarted after
// every change in connection state so that other centrals can still
// discover the device.
func (s *Service) handleEvent(ev radio.Event, data any) error {
	switch ev {
	case radio.CentralConnect, radio.CentralDisconnect:
	default:
		s.log.WithField("event", ev).Debug("ignoring radio event")
		return nil
	}
	c, ok := data.(radio.Central)
	if !ok {
		return fmt.Errorf("unexpected data type for %s event: %T", ev, data)
	}
	log := s.log.WithFields(logrus.Fields{
		"conn": c.Conn,
		"addr": c.Addr,
	})
	if ev == radio.CentralConnect {
		s.centrals[c.Conn] = struct{}{}
		log.Info("central connected")
	} else {
		delete(s.centrals, c.Conn)
		log.Info("central disconnected")
	}
	err := s.Start()
	if err != nil {
		return fmt.Errorf("failed to restart advertising after %s: %w", ev, err)
	}
	return nil
}
