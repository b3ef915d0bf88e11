// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/blebattery/battery"
)

type monitor struct {
	dev    bluetooth.Device
	levels chan int
	cancel context.CancelFunc

	muListen sync.Mutex
	level    *battery.LevelListener

	mu     sync.Mutex
	card   *image.Gray
	name   string
	status *statusLine
}

func newMonitor(ctx context.Context, dev bluetooth.Device, name string, update chan image.Image) (*monitor, error) {
	card := image.NewGray(image.Rectangle{Max: image.Point{X: 296, Y: 128}})
	blank(card)

	readout := newLevelReadout(subDrawImage(card, image.Rectangle{
		Min: image.Point{X: 0, Y: 0},
		Max: image.Point{X: 96, Y: 64},
	}))
	status := newStatusLine(subDrawImage(card, image.Rectangle{
		Min: image.Point{X: 96, Y: 0},
		Max: image.Point{X: 296, Y: 64},
	}))
	history := newLevelHistory(subDrawImage(card, image.Rectangle{
		Min: image.Point{X: 0, Y: 64},
		Max: image.Point{X: 296, Y: 128},
	}))

	m := &monitor{
		dev:    dev,
		levels: make(chan int, 1),
		card:   card,
		name:   name,
		status: status,
	}
	err := m.Read()
	if err != nil {
		return nil, err
	}
	err = m.SetNotify(true)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case level := <-m.levels:
				m.mu.Lock()
				readout.set(level)
				history.add(level)
				status.set(name, "updated "+time.Now().Format(time.TimeOnly))
				img := m.snapshot()
				m.mu.Unlock()
				select {
				case update <- img:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return m, nil
}

// Read reads the battery level from the device and adds it to the card.
func (m *monitor) Read() error {
	level, err := battery.Level(&m.dev)
	if err != nil {
		return fmt.Errorf("failed to read battery level: %w", err)
	}
	fmt.Printf("battery level: %d%%\n", level)
	m.add(level)
	return nil
}

// SetNotify starts or stops following battery level notifications.
func (m *monitor) SetNotify(on bool) error {
	m.muListen.Lock()
	defer m.muListen.Unlock()
	if on == (m.level != nil) {
		return nil
	}
	if !on {
		err := m.level.Close()
		m.level = nil
		if err != nil {
			return fmt.Errorf("failed to stop battery level notifications: %w", err)
		}
		return nil
	}
	l, err := battery.NewLevelListener(&m.dev, func(level int, err error) {
		if err != nil {
			log.Printf("failed to get battery level: %v", err)
			return
		}
		m.add(level)
	})
	if err != nil {
		return fmt.Errorf("failed to start battery level notifications: %w", err)
	}
	m.level = l
	return nil
}

// add queues level for drawing, replacing a level that has not yet
// been drawn.
func (m *monitor) add(level int) {
	for {
		select {
		case m.levels <- level:
			return
		default:
			select {
			case <-m.levels:
			default:
			}
		}
	}
}

// disconnected marks the card as no longer receiving updates.
func (m *monitor) disconnected() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.set(m.name, "disconnected")
	return m.snapshot()
}

// Card returns a copy of the current card.
func (m *monitor) Card() image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *monitor) snapshot() image.Image {
	img := image.NewGray(m.card.Bounds())
	draw.Draw(img, img.Bounds(), m.card, image.Point{}, draw.Src)
	return img
}

func (m *monitor) Close() error {
	m.cancel()
	return m.SetNotify(false)
}
