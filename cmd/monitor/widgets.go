// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"image/color"
	"image/draw"
	"strconv"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"

	"github.com/kortschak/blebattery/cmd/internal/ring"
)

var black = color.RGBA{A: 0xff}

// levelReadout renders the current battery percentage.
type levelReadout struct {
	img draw.Image
}

func newLevelReadout(img draw.Image) *levelReadout {
	return &levelReadout{img: img}
}

func (r *levelReadout) set(level int) {
	blank(r.img)

	width := r.img.Bounds().Dx()
	yOffset := -6

	levelText := strconv.Itoa(level) + "%"
	levelFont := &freesans.Bold18pt7b
	_, levelW := tinyfont.LineWidth(levelFont, levelText)
	tinyfont.WriteLine(
		displayShim{r.img},
		levelFont,
		int16(width-int(levelW))/2, int16(int(levelFont.YAdvance)+yOffset), levelText,
		black,
	)

	const label = "battery"
	labelFont := &freesans.Regular9pt7b
	_, labelW := tinyfont.LineWidth(labelFont, label)
	tinyfont.WriteLine(
		displayShim{r.img},
		labelFont,
		int16(width-int(labelW))/2, int16(int(labelFont.YAdvance)+int(levelFont.YAdvance)+yOffset), label,
		black,
	)
}

// statusLine renders the device name and connection state.
type statusLine struct {
	img draw.Image
}

func newStatusLine(img draw.Image) *statusLine {
	return &statusLine{img: img}
}

func (s *statusLine) set(name, status string) {
	blank(s.img)

	font := &freesans.Regular9pt7b
	if name == "" {
		name = "unnamed"
	}
	for i, text := range []string{name, status} {
		tinyfont.WriteLine(
			displayShim{s.img},
			font,
			4, int16((i+1)*int(font.YAdvance)), text,
			black,
		)
	}
}

// levelHistory plots recent battery levels, one column per level.
type levelHistory struct {
	ring *ring.Buffer[int]
	img  draw.Image
	buf  []int
}

func newLevelHistory(img draw.Image) *levelHistory {
	return &levelHistory{
		ring: ring.NewBuffer[int](img.Bounds().Dx()),
		img:  img,
	}
}

func (h *levelHistory) add(level int) {
	h.ring.Push(level)
	h.plot()
}

func (h *levelHistory) plot() {
	blank(h.img)

	height := h.img.Bounds().Dy()
	dotted(h.img, scale(50, 0, 100, height), black)

	h.buf = h.ring.AppendTo(h.buf[:0])
	switch len(h.buf) {
	case 0:
		return
	case 1:
		h.img.Set(0, scale(h.buf[0], 0, 100, height), black)
		return
	}
	for i, v := range h.buf[1:] {
		line(h.img, i, scale(h.buf[i], 0, 100, height), i+1, scale(v, 0, 100, height), black)
	}
}
