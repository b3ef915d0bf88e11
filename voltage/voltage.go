// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package voltage implements sampling of a battery voltage through an
// analog to digital converter and conversion of samples to a battery
// level percentage.
package voltage

import (
	"fmt"
)

// ADC is an analog sensor.
type ADC interface {
	// Read returns a raw sample.
	Read() (int, error)
}

// LevelSetter receives battery level percentages. The percentage is not
// rounded or clamped.
type LevelSetter interface {
	SetLevelPercentage(float64) error
}

// Reader samples an ADC and forwards changed readings as battery level
// percentages.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	adc        ADC
	upperLimit int

	lastRead int
	valid    bool
}

// NewReader returns a new Reader sampling adc. A raw sample equal to
// upperLimit is reported as 100%.
func NewReader(adc ADC, upperLimit int) (*Reader, error) {
	if upperLimit <= 0 {
		return nil, fmt.Errorf("invalid upper limit: %d", upperLimit)
	}
	return &Reader{adc: adc, upperLimit: upperLimit}, nil
}

// Refresh samples the ADC and, if the raw sample differs from the last
// sample or there is no previous sample, passes the corresponding level
// percentage to dst. dst may be nil, in which case only the last sample
// is updated.
//
// Samples are compared raw, so distinct samples that map to the same
// rounded percentage are both forwarded.
func (r *Reader) Refresh(dst LevelSetter) error {
	v, err := r.adc.Read()
	if err != nil {
		return fmt.Errorf("failed to read adc: %w", err)
	}
	if r.valid && v == r.lastRead {
		return nil
	}
	r.lastRead = v
	r.valid = true
	if dst == nil {
		return nil
	}
	return dst.SetLevelPercentage(float64(v) / float64(r.upperLimit) * 100)
}

// LastRead returns the most recent raw sample. The boolean is false if
// no sample has been taken.
func (r *Reader) LastRead() (raw int, ok bool) {
	return r.lastRead, r.valid
}

// UpperLimit returns the raw sample that corresponds to 100%.
func (r *Reader) UpperLimit() int { return r.upperLimit }
