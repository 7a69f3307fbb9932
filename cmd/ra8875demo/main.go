// command ra8875demo drives an RA8875 breakout from a Linux host over
// periph.io's SPI registry: it brings the controller up, sets the
// write direction, and streams a single filled rectangle through the
// descriptor-chain core using the host's simulated DMA engine (no
// descriptor-capable DMA controller exists on the SPI path here — only
// a tinygo target wired to dma.NewHWChannel can arm real silicon).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"periph.io/x/conn/v3/physic"

	"lcddma.dev/ra8875/dma"
	"lcddma.dev/ra8875/ra8875"
	"lcddma.dev/ra8875/ra8875/halperiph"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ra8875demo: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	port := flag.String("port", "", "SPI port name (empty picks the first available)")
	clockMHz := flag.Int("clock", 20, "SPI clock rate in MHz")
	flag.Parse()

	bus, err := halperiph.Open(*port, physic.Frequency(*clockMHz)*physic.MegaHertz, nil)
	if err != nil {
		return err
	}
	defer bus.Close()

	cfg := ra8875.DefaultConfig()
	cfg.Width, cfg.Height = 800, 480

	// No DMA silicon behind a host SPI port: the simulator walks the
	// finalized descriptor chain synchronously and calls back inline.
	channel := dma.NewSimChannel(0)
	status := dma.SimStatus{}
	dev := ra8875.New(bus, ra8875.CSPin{}, 0, channel, status, cfg)
	channel.SetEngine(dev.Engine())

	if err := dev.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	const width, height = 100, 50
	pixels := make([]byte, width*height*2)
	for i := 0; i < len(pixels); i += 2 {
		pixels[i], pixels[i+1] = 0x07, 0xE0 // solid green, RGB565
	}

	done := make(chan struct{})
	if err := dev.DrawPixelArea(pixels, 10, 10, width, width*height, func() {
		close(done)
	}); err != nil {
		return fmt.Errorf("draw_pixel_area: %w", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		return fmt.Errorf("draw_pixel_area did not complete")
	}
	return nil
}
