// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package voltage

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sysfs is an ADC that reads integer samples from a sysfs attribute
// file, such as an industrial I/O channel
//
//	/sys/bus/iio/devices/iio:device0/in_voltage0_raw
//
// or a power supply capacity
//
//	/sys/class/power_supply/BAT0/capacity
type Sysfs struct {
	Path string
}

// Read returns the sample currently held in the file at s.Path.
func (s Sysfs) Read() (int, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to read sample from %s: %w", s.Path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("invalid sample in %s: %w", s.Path, err)
	}
	return v, nil
}
