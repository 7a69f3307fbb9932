// Package ra8875 implements the core of a driver for the RA8875 TFT LCD
// controller: a DMA descriptor-chain scheduler that streams rectangular
// pixel regions to the controller over SPI, and the thin synchronous
// register-write path everything else (init, single-byte commands) uses.
//
// The package is hardware-agnostic: callers supply a Bus and CSPin
// implementation (see device.go) and a dma.Channel/dma.SPIStatus pair
// (see the dma package's engine_tinygo.go / engine_sim.go backends).
package ra8875

import "time"

// Recognized configuration defaults (spec.md §6).
const (
	DefaultFramesPerLine       = 21
	DefaultLinesPerBatch       = 8
	DefaultWorkingDataPerLine  = 19
	DefaultDummyTransfers      = 100
	DefaultCSHighTransfers     = 120
	DefaultDMATimeout          = 100 * time.Millisecond
)

// Rotation is the panel rotation applied to logical coordinates before
// they are written to the controller (spec.md §6). Only 0 and 2 are
// recognized; the core never implements the full 4-way rotation set
// used by the 2D drawing primitives, which are out of scope.
type Rotation int

const (
	Rotation0 Rotation = 0
	Rotation2 Rotation = 2
)

// Config replaces the original's global configuration macros (Design
// Notes §9) with a record passed to New. DefaultConfig supplies the
// spec's typical values; callers override only what their panel needs.
type Config struct {
	Width, Height int
	VOffset       int
	Rotation      Rotation

	FramesPerLine      int
	LinesPerBatch      int
	WorkingDataPerLine int
	DummyTransfers     int
	CSHighTransfers    int

	ReuseFramesIfAvailable bool
	DMATimeout             time.Duration
}

// DefaultConfig returns a Config with the spec's recognized typical
// values for everything except panel geometry, which the caller must
// still set (Width, Height, VOffset, Rotation).
func DefaultConfig() Config {
	return Config{
		FramesPerLine:          DefaultFramesPerLine,
		LinesPerBatch:          DefaultLinesPerBatch,
		WorkingDataPerLine:     DefaultWorkingDataPerLine,
		DummyTransfers:         DefaultDummyTransfers,
		CSHighTransfers:        DefaultCSHighTransfers,
		ReuseFramesIfAvailable: true,
		DMATimeout:             DefaultDMATimeout,
	}
}

// capFrames is the ring's descriptor capacity for this configuration.
func (c Config) capFrames() int {
	return c.FramesPerLine * c.LinesPerBatch
}

// capBytes is the ring's working-storage capacity for this configuration.
func (c Config) capBytes() int {
	return c.WorkingDataPerLine * c.LinesPerBatch
}
