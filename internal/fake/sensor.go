// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fake

import (
	"errors"
	"sync"
)

// ErrNoSamples is returned by ADC.Read when its samples are exhausted.
var ErrNoSamples = errors.New("no more samples")

// ADC is a call-recording analog sensor. Unless a "Read" stub is
// registered, reads return the queued samples in order.
type ADC struct {
	Recorder

	mu      sync.Mutex
	samples []int
}

// NewADC returns an ADC that will return samples in order.
func NewADC(samples ...int) *ADC {
	return &ADC{samples: samples}
}

func (a *ADC) Read() (int, error) {
	ret, ok := a.Record("Read")
	if ok {
		var v int
		if len(ret) != 0 {
			v, _ = ret[0].(int)
		}
		return v, errAt(ret, 1)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.samples) == 0 {
		return 0, ErrNoSamples
	}
	v := a.samples[0]
	a.samples = a.samples[1:]
	return v, nil
}

// LevelSink records battery level percentages it is given.
type LevelSink struct {
	Recorder
}

func (s *LevelSink) SetLevelPercentage(p float64) error {
	ret, _ := s.Record("SetLevelPercentage", p)
	return errAt(ret, 0)
}

// Levels returns the percentages received in order.
func (s *LevelSink) Levels() []float64 {
	var levels []float64
	for _, args := range s.CallsOf("SetLevelPercentage") {
		levels = append(levels, args[0].(float64))
	}
	return levels
}
