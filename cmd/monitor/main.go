// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The monitor command is a demonstration of the battery package for
// following the battery level of a Bluetooth LE peripheral.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"time"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"tinygo.org/x/bluetooth"

	"github.com/kortschak/blebattery/battery"
	"github.com/kortschak/blebattery/internal/forkbeard"
)

func main() {
	addr := flag.String("addr", "", "peripheral bluetooth address (default any)")
	name := flag.String("name", "", "peripheral advertised name (default any)")
	timeout := flag.Duration("timeout", 30*time.Second, "scan timeout")
	save := flag.String("save", "", "write the final card to this PNG file on exit")
	flag.Parse()

	adapter := bluetooth.DefaultAdapter
	err := adapter.Enable()
	if err != nil {
		fmt.Printf("failed to enable bluetooth: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("scanning...")
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	found, err := forkbeard.Scan(ctx, adapter, forkbeard.All(
		forkbeard.Advertising(battery.ServiceUUID()),
		forkbeard.Address(*addr),
		forkbeard.Name(*name),
	))
	cancel()
	if err != nil {
		log.Fatalf("no battery peripheral found: %v", err)
	}
	fmt.Printf(`
found device:
  mac: %s rss: %d
  name: %q
  payload: %#v
`,
		found.Address, found.RSSI,
		found.LocalName(),
		found.AdvertisementPayload.Bytes(),
	)
	dev, err := adapter.Connect(found.Address, bluetooth.ConnectionParams{})
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer dev.Disconnect()

	update := make(chan image.Image)
	m, err := newMonitor(context.Background(), dev, found.LocalName(), update)
	if err != nil {
		log.Fatal(err)
	}

	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected || device.Address != found.Address {
			return
		}
		fmt.Println("disconnected")
		go func() { update <- m.disconnected() }()
	})

	exit := func(code int) {
		m.Close()
		if *save != "" {
			err := writePNG(*save, m.Card())
			if err != nil {
				log.Printf("failed to save card: %v", err)
				code = 1
			}
		}
		os.Exit(code)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		exit(0)
	}()

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Battery"), app.Size(296, 176))
		if err := loop(w, m, update); err != nil {
			log.Print(err)
			exit(1)
		}
		exit(0)
	}()
	app.Main()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = png.Encode(f, img)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loop(w *app.Window, m *monitor, update chan image.Image) error {
	expl := explorer.NewExplorer(w)
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	events := make(chan event.Event)
	ack := make(chan struct{})

	go func() {
		for {
			ev := w.Event()
			events <- ev
			<-ack
			if _, ok := ev.(app.DestroyEvent); ok {
				return
			}
		}
	}()
	var (
		img    image.Image
		ops    op.Ops
		read   widget.Clickable
		save   widget.Clickable
		notify = widget.Bool{Value: true}
	)
	for {
		select {
		case img = <-update:
			w.Invalidate()
		case e := <-events:
			expl.ListenEvents(e)
			switch e := e.(type) {
			case app.DestroyEvent:
				ack <- struct{}{}
				return e.Err
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)
				if read.Clicked(gtx) {
					go func() {
						if err := m.Read(); err != nil {
							log.Print(err)
						}
					}()
				}
				if notify.Update(gtx) {
					on := notify.Value
					go func() {
						if err := m.SetNotify(on); err != nil {
							log.Print(err)
						}
					}()
				}
				if save.Clicked(gtx) {
					go saveCard(expl, m.Card())
				}
				layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						if img == nil {
							return layout.Dimensions{}
						}
						return widget.Image{
							Src: paint.NewImageOp(img),
							Fit: widget.Contain,
						}.Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
							layout.Rigid(inset(material.Button(th, &read, "Read").Layout)),
							layout.Rigid(inset(material.Switch(th, &notify, "notify").Layout)),
							layout.Rigid(inset(material.Body1(th, "Notify").Layout)),
							layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
								return layout.Dimensions{Size: gtx.Constraints.Min}
							}),
							layout.Rigid(inset(material.Button(th, &save, "Save").Layout)),
						)
					}),
				)
				e.Frame(gtx.Ops)
			}
			ack <- struct{}{}
		}
	}
}

func inset(w layout.Widget) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(4)).Layout(gtx, w)
	}
}

func saveCard(expl *explorer.Explorer, img image.Image) {
	f, err := expl.CreateFile("battery.png")
	if err != nil {
		if err != explorer.ErrUserDecline {
			log.Printf("failed to create card file: %v", err)
		}
		return
	}
	err = png.Encode(f, img)
	if err != nil {
		log.Printf("failed to write card: %v", err)
	}
	err = f.Close()
	if err != nil {
		log.Printf("failed to close card file: %v", err)
	}
}
