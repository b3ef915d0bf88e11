// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package voltage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/blebattery/battery"
	"github.com/kortschak/blebattery/internal/fake"
	"github.com/kortschak/blebattery/radio"
)

func TestNewReader(t *testing.T) {
	adc := fake.NewADC()
	r, err := NewReader(adc, 511)
	require.NoError(t, err)
	assert.Equal(t, 0, adc.Len())
	_, ok := r.LastRead()
	assert.False(t, ok)
	assert.Equal(t, 511, r.UpperLimit())

	for _, limit := range []int{0, -1} {
		_, err = NewReader(adc, limit)
		assert.Error(t, err, "limit %d", limit)
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		samples []int
		want    []float64
	}{
		{
			name:    "full",
			limit:   511,
			samples: []int{511},
			want:    []float64{100},
		},
		{
			name:    "repeat_suppressed",
			limit:   511,
			samples: []int{511, 511, 0},
			want:    []float64{100, 0},
		},
		{
			name:    "unchanged",
			limit:   100,
			samples: []int{40, 40, 40, 40},
			want:    []float64{40},
		},
		{
			name:    "raw_comparison",
			limit:   1000,
			samples: []int{500, 501, 501},
			want:    []float64{50, 50.1},
		},
		{
			name:    "over_limit",
			limit:   100,
			samples: []int{150},
			want:    []float64{150},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := NewReader(fake.NewADC(test.samples...), test.limit)
			require.NoError(t, err)
			var sink fake.LevelSink
			for range test.samples {
				require.NoError(t, r.Refresh(&sink))
			}
			assert.InDeltaSlice(t, test.want, sink.Levels(), 1e-9)
			last, ok := r.LastRead()
			assert.True(t, ok)
			assert.Equal(t, test.samples[len(test.samples)-1], last)
		})
	}
}

func TestRefreshNilSetter(t *testing.T) {
	r, err := NewReader(fake.NewADC(10, 10), 100)
	require.NoError(t, err)
	require.NoError(t, r.Refresh(nil))
	last, ok := r.LastRead()
	assert.True(t, ok)
	assert.Equal(t, 10, last)

	// The sample was recorded, so the repeat is suppressed.
	var sink fake.LevelSink
	require.NoError(t, r.Refresh(&sink))
	assert.Equal(t, 0, sink.Len())
}

func TestRefreshFaults(t *testing.T) {
	fault := errors.New("adc fault")
	adc := fake.NewADC()
	adc.When("Read", nil, 0, fault)
	r, err := NewReader(adc, 100)
	require.NoError(t, err)
	var sink fake.LevelSink
	assert.ErrorIs(t, r.Refresh(&sink), fault)
	_, ok := r.LastRead()
	assert.False(t, ok)
	assert.Equal(t, 0, sink.Len())

	r, err = NewReader(fake.NewADC(50), 100)
	require.NoError(t, err)
	sink.When("SetLevelPercentage", nil, fault)
	assert.ErrorIs(t, r.Refresh(&sink), fault)
}

func TestRefreshService(t *testing.T) {
	rad := fake.NewRadio()
	svc, err := battery.NewService(rad)
	require.NoError(t, err)
	require.NoError(t, svc.RegisterServices())
	require.NoError(t, rad.Connect(1))

	r, err := NewReader(fake.NewADC(511, 511, 0, 255), 511)
	require.NoError(t, err)
	for range 4 {
		require.NoError(t, r.Refresh(svc))
	}

	var levels []byte
	for _, args := range rad.CallsOf("WriteCharacteristic")[1:] {
		levels = append(levels, args[1].([]byte)[0])
	}
	assert.Equal(t, []byte{100, 0, 50}, levels)
	assert.Equal(t, 3, rad.CalledWith("Notify", radio.ConnHandle(1), radio.Handle(1), []byte{100})+
		rad.CalledWith("Notify", radio.ConnHandle(1), radio.Handle(1), []byte{0})+
		rad.CalledWith("Notify", radio.ConnHandle(1), radio.Handle(1), []byte{50}))

	got, err := svc.LevelPercentage()
	require.NoError(t, err)
	assert.Equal(t, 50, got)
}

func TestSysfs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("2047\n"), 0o644))

	v, err := Sysfs{Path: path}.Read()
	require.NoError(t, err)
	assert.Equal(t, 2047, v)

	require.NoError(t, os.WriteFile(path, []byte("n/a\n"), 0o644))
	_, err = Sysfs{Path: path}.Read()
	assert.Error(t, err)

	missing := filepath.Join(dir, "missing")
	_, err = Sysfs{Path: missing}.Read()
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "failed to read sample from "+missing)
}
