package ra8875

import "lcddma.dev/ra8875/dma"

// operationKind is the closed set of operation kinds an Operation State
// can hold (spec.md §3). draw_pixel_area is the only kind the core
// implements; the type exists as the extension point spec.md names.
type operationKind int

const (
	opNone operationKind = iota
	opDrawPixelArea
)

// rowSlot remembers where one row template's patchable fields live in
// the ring, so a later hot-patch batch can overwrite them in place
// without re-invoking the frame builder.
type rowSlot struct {
	// coordRecordAddr holds the address of each of the 4 coordinate-entry
	// records (CURH0, CURH1, CURV0, CURV1, in that order); the
	// coordinate_byte cell is the 4th byte of each record.
	coordRecordAddr [4]uintptr
	// pixelDescIndex is the ring frame index of the pixel-data descriptor
	// (the second descriptor AddSPIDrawPixels appends).
	pixelDescIndex int
}

// drawAreaOp is the draw_pixel_area Operation State: the function-
// specific payload of spec.md §3, plus the vtable spec.md's Design
// Notes §9 asks for in place of raw function pointers.
type drawAreaOp struct {
	dev *Device

	pixels  []byte // RGB565 bytes, row-major, 2 bytes per pixel
	width   int    // row width in pixels
	px0     int    // physical top-left x
	py0     int    // physical top-left y
	rowStep int    // +1 for Rotation0, -1 for Rotation2

	remaining     int // pixels not yet sent
	rowsCompleted int

	onComplete func()
}

// IsComplete implements dma.Completion.
func (op *drawAreaOp) IsComplete() bool {
	return op.remaining == 0
}

// FetchNextBatch implements dma.Completion: refill the ring with the
// next batch of rows and return the finalized chain's head address.
func (op *drawAreaOp) FetchNextBatch(ring *dma.Ring) uintptr {
	return op.dev.fillBatch(op, ring)
}

// OnComplete implements dma.Completion: deactivate chip-select and run
// the caller's completion callback.
func (op *drawAreaOp) OnComplete() {
	op.dev.bus.Deselect()
	op.dev.activeOp = nil
	op.dev.trace.Mark("draw_pixel_area.complete")
	if op.onComplete != nil {
		op.onComplete()
	}
}
