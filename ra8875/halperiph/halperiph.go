// Package halperiph implements ra8875.Bus over periph.io, for driving a
// real RA8875 breakout from a Linux SBC's hardware SPI port without any
// DMA silicon. It exercises the device's synchronous register path
// (Init, the legacy fillRect, status polling) independent of the
// descriptor-chain core in package dma.
package halperiph

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Bus opens an SPI port via the periph.io registry (the first available
// one when Open is given an empty name) and
// drives an RA8875's reset line over GPIO, in the manner of lcd.Open.
// Chip select is left to the SPI port's own hardware CS: Select and
// Deselect are no-ops, since periph.io's spi.Conn asserts and releases
// CS around every Tx call on its own.
type Bus struct {
	port spi.PortCloser
	conn spi.Conn
	rst  gpio.PinOut
}

// Open connects to the named SPI port (empty string picks the first
// one the registry finds) at clockHz and drives rst high to take the
// controller out of reset. rst may be nil if the board wires RA8875
// reset to something other than a host GPIO.
func Open(name string, clockHz physic.Frequency, rst gpio.PinOut) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("halperiph: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("halperiph: %w", err)
	}
	c, err := p.Connect(clockHz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("halperiph: %w", err)
	}

	b := &Bus{port: p, conn: c, rst: rst}
	if rst != nil {
		if err := b.reset(); err != nil {
			p.Close()
			return nil, err
		}
	}
	return b, nil
}

func (b *Bus) reset() error {
	if err := b.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("halperiph: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	b.rst.FastOut(gpio.Low)
	time.Sleep(10 * time.Millisecond)
	b.rst.FastOut(gpio.High)
	time.Sleep(20 * time.Millisecond)
	return nil
}

// Close releases the underlying SPI port.
func (b *Bus) Close() error {
	return b.port.Close()
}

func (b *Bus) Select()   {}
func (b *Bus) Deselect() {}

// Transfer sends tx and, if rx is non-nil, captures the simultaneously
// clocked-in bytes (ra8875.Bus: the command/data-read framing of
// spec.md §6 relies on rx[1] holding the returned byte).
func (b *Bus) Transfer(tx, rx []byte) error {
	return b.conn.Tx(tx, rx)
}

// MaxTxSize reports the largest single Tx the underlying port accepts,
// for callers chunking large pixel buffers (mirrors lcd.LCD's use of
// conn.Limits).
func (b *Bus) MaxTxSize() int {
	if lim, ok := b.conn.(conn.Limits); ok {
		return lim.MaxTxSize()
	}
	return 4096
}
