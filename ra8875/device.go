package ra8875

import (
	"lcddma.dev/ra8875/ra8875/debug"
	"lcddma.dev/ra8875/dma"
)

// Bus is the synchronous SPI transport the device uses for every
// register-level operation: init, single-byte commands, and the
// fallback path every drawing primitive outside the pixel-streaming
// core relies on (spec.md §4.6).
type Bus interface {
	Select()
	Deselect()
	// Transfer writes tx and, if rx is non-nil and the same length,
	// reads the peripheral's simultaneous response into it.
	Transfer(tx, rx []byte) error
}

// CSPin addresses the chip-select pin for DMA pin-toggle descriptors:
// a stable set/clear register pair and the bitmask written to them.
// This is distinct from Bus.Select/Deselect, which toggle the same pin
// synchronously for the non-DMA path.
type CSPin struct {
	Mask          uintptr
	SetRegister   uintptr
	ClearRegister uintptr
}

// Device is the RA8875 driver: geometry and protocol state, plus the
// DMA machinery for the pixel-streaming core. Exactly one draw_pixel_area
// operation may be active at a time (spec.md §3); the foreground must
// not call DrawPixelArea again until the previous one's completion
// callback has run.
type Device struct {
	bus        Bus
	cs         CSPin
	csTarget   dma.PinTarget
	txRegister uintptr
	cfg        Config

	ring   *dma.Ring
	engine *dma.Engine

	activeOp *drawAreaOp

	lastOperationKind operationKind
	lastStorageIdx    int
	rowSlots          []rowSlot

	trace *debug.Tracer
}

// Engine returns the device's DMA engine adapter, for wiring a
// simulated or real Channel's completion interrupt back to it
// (dma.Channel implementations call SetEngine with this value).
func (d *Device) Engine() *dma.Engine {
	return d.engine
}

// SetTracer attaches a debug.Tracer for timing marks around batch
// planning; t may be nil to detach. Compiled out entirely without the
// debug build tag.
func (d *Device) SetTracer(t *debug.Tracer) {
	d.trace = t
}

// New constructs a Device. bus and cs are the synchronous/DMA
// collaborators named in spec.md §1; txRegister is the SPI peripheral's
// transmit-data register address, the destination every streaming
// descriptor targets. channel and status wire the device to a DMA
// engine backend (dma.NewSimChannel/dma.SimStatus on the host,
// dma.NewHWChannel and a register-backed SPIStatus on tinygo targets).
func New(bus Bus, cs CSPin, txRegister uintptr, channel dma.Channel, status dma.SPIStatus, cfg Config) *Device {
	d := &Device{
		bus:        bus,
		cs:         cs,
		csTarget:   dma.PinTarget{Mask: cs.Mask, SetRegister: cs.SetRegister, ClearRegister: cs.ClearRegister},
		txRegister: txRegister,
		cfg:        cfg,
		ring:       dma.NewRing(cfg.capFrames(), cfg.capBytes()),
		engine:     dma.NewEngine(channel, status),
	}
	return d
}

// Init performs synchronous bring-up: checks the identification
// register and returns KindBadID if the device does not answer with the
// expected RA8875 ID (spec.md §7, scenario S6). No further register
// writes are attempted if the check fails.
func (d *Device) Init() error {
	id, err := d.readReg(0x00)
	if err != nil {
		return err
	}
	if id != idValue {
		return &Error{Kind: KindBadID}
	}
	return nil
}

// DrawPixelArea is the foreground entry point for the DMA pixel-
// streaming core (spec.md §4.4). It computes the physical top-left via
// the device's rotation transform, sets the write-direction register
// synchronously, builds the first batch, arms DMA, and returns without
// blocking. onComplete runs once every pixel has been streamed; pixels
// must remain valid and unmodified until then (the driver never copies
// it).
func (d *Device) DrawPixelArea(pixels []byte, x, y, width, num int, onComplete func()) error {
	if err := d.setWriteDirection(); err != nil {
		return err
	}

	px0, py0 := d.transform(x, y)
	rowStep := 1
	if d.cfg.Rotation == Rotation2 {
		rowStep = -1
	}

	op := &drawAreaOp{
		dev:        d,
		pixels:     pixels,
		width:      width,
		px0:        px0,
		py0:        py0,
		rowStep:    rowStep,
		remaining:  num,
		onComplete: onComplete,
	}
	d.activeOp = op

	d.trace.Mark("draw_pixel_area.start")
	d.bus.Select()
	head := d.fillBatch(op, d.ring)
	d.engine.Start(d.ring, op, head)
	d.trace.Mark("draw_pixel_area.armed")
	return nil
}

func (d *Device) setWriteDirection() error {
	cur, err := d.readReg(regMWCR0)
	if err != nil {
		return err
	}
	dir := (cur &^ mwcr0DirMask) | d.writeDirection()
	return d.writeReg(regMWCR0, dir)
}
