package dma

import (
	"errors"
	"unsafe"
)

// ErrInvalidRegister is returned by AddCoordBits for a register tag
// outside the four recognized cursor-position registers. Callers should
// treat it as a programmer error (spec.md §7's coord.invalid-register).
var ErrInvalidRegister = errors.New("dma: invalid coordinate register")

// filler is the stable byte DMA reads from when a descriptor has no
// real source buffer (dummy transfers, and SPI sends with a nil
// buffer). It must be a package-level variable, never a stack value,
// because DMA dereferences it asynchronously.
var filler byte = 0xFF

func fillerAddress() uintptr {
	return uintptr(unsafe.Pointer(&filler))
}

// PinTarget addresses a GPIO pin for DMA pin-toggle descriptors: a
// stable word holding the pin's bitmask, and the fixed set/clear
// registers that bitmask is written to.
type PinTarget struct {
	Mask          uintptr
	SetRegister   uintptr
	ClearRegister uintptr
}

// CoordTag identifies one of the four recognized cursor-position
// registers a coordinate-entry command can target. It is a closed set:
// AddCoordBits rejects any other value as ErrInvalidRegister.
type CoordTag int

const (
	CoordCURH0 CoordTag = iota
	CoordCURH1
	CoordCURV0
	CoordCURV1
)

// CoordRegisters maps the four recognized CoordTag values to the
// device's actual register numbers, so the dma package stays free of
// any RA8875-specific constant.
type CoordRegisters struct {
	CURH0, CURH1, CURV0, CURV1 byte
}

// Builder emits descriptor sequences for the primitives a pixel-
// streaming SPI driver needs: pin toggles, dummy shifter flushes,
// byte-stream sends, coordinate-register writes, and pixel-block
// writes. Every method appends to ring and, where needed, stages
// control bytes into the ring's working storage; all fail with
// ErrRingFull or ErrWorkingStorageFull on exhaustion, which callers
// treat as "flush and retry on the next batch."
type Builder struct {
	ring           *Ring
	txRegister     uintptr
	cs             PinTarget
	coordRegs      CoordRegisters
	csLowTransfers int
}

// csLowTransfers is the number of word transfers used to assert chip
// select. Raising it is governed separately by the caller-supplied
// CS-high hold time (spec.md §6's CS_HIGH_TRANSFERS).
const csLowTransfers = 2

// NewBuilder constructs a Builder that appends to ring, targeting
// txRegister for SPI byte streams, cs for chip-select toggling, and
// coordRegs for resolving the four recognized CoordTag values.
func NewBuilder(ring *Ring, txRegister uintptr, cs PinTarget, coordRegs CoordRegisters) *Builder {
	return &Builder{ring: ring, txRegister: txRegister, cs: cs, coordRegs: coordRegs, csLowTransfers: csLowTransfers}
}

// RingSize reports the number of descriptors currently in the builder's
// ring, for callers that need to locate a just-appended descriptor by
// index (e.g. for later in-place patching).
func (b *Builder) RingSize() int {
	return b.ring.Size()
}

// AddPinToggle appends one descriptor that drives pin's set or clear
// register from pin.Mask, n word transfers wide. pin.Mask must be a
// long-lived address: DMA dereferences it asynchronously.
func (b *Builder) AddPinToggle(setHigh bool, pin PinTarget, n int) error {
	dst := pin.ClearRegister
	if setHigh {
		dst = pin.SetRegister
	}
	return b.ring.Add(Descriptor{
		SourceAddress:      pin.Mask,
		DestinationAddress: dst,
		ControlA: ControlA{
			TransferCount: uint32(n),
			SrcWidth:      WidthWord,
			DstWidth:      WidthWord,
		},
		ControlB: ControlB{
			Flow:    FlowMemToMem,
			SrcIncr: IncrFixed,
			DstIncr: IncrFixed,
		},
	})
}

// AddCSToggle specializes AddPinToggle to the chip-select pin captured
// at construction. Lowering CS uses a small fixed transfer count just
// enough to assert the line; raising it uses csHighTransfers, wide
// enough to give the controller its required hold time.
func (b *Builder) AddCSToggle(setHigh bool, csHighTransfers int) error {
	n := b.csLowTransfers
	if setHigh {
		n = csHighTransfers
	}
	return b.AddPinToggle(setHigh, b.cs, n)
}

// AddDummy appends one descriptor that shifts n 0xFF bytes onto SPI,
// used to flush the shifter before de-asserting chip select.
func (b *Builder) AddDummy(n int) error {
	return b.ring.Add(Descriptor{
		SourceAddress:      fillerAddress(),
		DestinationAddress: b.txRegister,
		ControlA: ControlA{
			TransferCount: uint32(n),
			SrcWidth:      WidthByte,
			DstWidth:      WidthByte,
		},
		ControlB: ControlB{
			Flow:    FlowMemToPeripheral,
			SrcIncr: IncrFixed,
			DstIncr: IncrFixed,
		},
	})
}

// AddSPITransfer appends one descriptor sending n bytes from buf onto
// SPI. If buf is nil, the source becomes the stable filler byte with a
// fixed (non-incrementing) address, i.e. pure filler.
func (b *Builder) AddSPITransfer(buf []byte, n int) error {
	src := fillerAddress()
	incr := IncrFixed
	if buf != nil {
		src = uintptr(unsafe.Pointer(&buf[0]))
		incr = IncrIncrementing
	}
	return b.ring.Add(Descriptor{
		SourceAddress:      src,
		DestinationAddress: b.txRegister,
		ControlA: ControlA{
			TransferCount: uint32(n),
			SrcWidth:      WidthByte,
			DstWidth:      WidthByte,
		},
		ControlB: ControlB{
			Flow:    FlowMemToPeripheral,
			SrcIncr: incr,
			DstIncr: IncrFixed,
		},
	})
}

// Wire framing selector bytes (spec.md §6).
const (
	CmdSelect  byte = 0x80
	DataSelect byte = 0x00
)

// AddCoordBits stages a 4-byte coordinate-entry command (command
// select, register number, data select, coordinate byte) into working
// storage, picking the low byte of value for a "0" register and the
// high byte for a "1" register, then appends a single byte-stream send
// for those 4 bytes. It returns the staged record's address so a later
// batch can patch the coordinate byte in place (the hot-patch path).
// tag must be one of the four recognized CoordTag values; any other
// value is a programmer error reported as ErrInvalidRegister.
func (b *Builder) AddCoordBits(value uint16, tag CoordTag) (uintptr, error) {
	var regNum byte
	var high bool
	switch tag {
	case CoordCURH0:
		regNum, high = b.coordRegs.CURH0, false
	case CoordCURH1:
		regNum, high = b.coordRegs.CURH1, true
	case CoordCURV0:
		regNum, high = b.coordRegs.CURV0, false
	case CoordCURV1:
		regNum, high = b.coordRegs.CURV1, true
	default:
		return 0, ErrInvalidRegister
	}
	coordByte := byte(value)
	if high {
		coordByte = byte(value >> 8)
	}
	cmd := [4]byte{CmdSelect, regNum, DataSelect, coordByte}
	addr, err := b.ring.AddWorkingData(cmd[:])
	if err != nil {
		return 0, err
	}
	staged := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(cmd))
	if err := b.AddSPITransfer(staged, len(cmd)); err != nil {
		return 0, err
	}
	return addr, nil
}

// AddSPIDrawPixels stages the 3-byte memory-write-cursor command prefix
// (command select, MRWC register, data select) into working storage,
// appends a send for those 3 bytes, then appends a send for the pixel
// buffer itself. It returns the staged command prefix's address.
func (b *Builder) AddSPIDrawPixels(mrwcRegister byte, buf []byte) (uintptr, error) {
	if !b.ring.CanAddWorkingData(3) {
		return 0, ErrWorkingStorageFull
	}
	if !b.ring.CanAdd(2) {
		return 0, ErrRingFull
	}
	cmd := [3]byte{CmdSelect, mrwcRegister, DataSelect}
	addr, err := b.ring.AddWorkingData(cmd[:])
	if err != nil {
		return 0, err
	}
	staged := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(cmd))
	if err := b.AddSPITransfer(staged, len(cmd)); err != nil {
		return 0, err
	}
	if err := b.AddSPITransfer(buf, len(buf)); err != nil {
		return 0, err
	}
	return addr, nil
}
