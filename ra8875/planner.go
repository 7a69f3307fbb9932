package ra8875

import (
	"unsafe"

	"lcddma.dev/ra8875/dma"
)

// coordTags lists the four recognized coordinate registers in the wire
// order the row layout writes them: X low, X high, Y low, Y high.
var coordTags = [4]dma.CoordTag{dma.CoordCURH0, dma.CoordCURH1, dma.CoordCURV0, dma.CoordCURV1}

// fillBatch is the Batch Planner (spec.md §4.4): it fills ring with as
// many rows of op as fit in one DMA arm, finalizes the chain, and
// returns its head address. It is called once from DrawPixelArea to
// arm the first batch, and again from drawAreaOp.FetchNextBatch inside
// the completion interrupt to refill.
func (d *Device) fillBatch(op *drawAreaOp, ring *dma.Ring) uintptr {
	rowsAvailable := d.cfg.LinesPerBatch
	hotPatch := d.cfg.ReuseFramesIfAvailable &&
		d.lastOperationKind == opDrawPixelArea &&
		len(d.rowSlots) > 0 &&
		ring.Size() == len(d.rowSlots)*d.cfg.FramesPerLine

	var rows int
	if hotPatch {
		rows = d.hotPatchRows(op, ring, rowsAvailable)
	} else {
		rows = d.coldBuildRows(op, ring, rowsAvailable)
	}

	ring.SetSize(rows * d.cfg.FramesPerLine)

	d.lastOperationKind = opDrawPixelArea
	d.lastStorageIdx = ring.StorageIdx()

	return ring.Finalize()
}

// coldBuildRows clears the ring and builds full row sequences from
// scratch, up to rowsAvailable or until the ring/storage is exhausted.
func (d *Device) coldBuildRows(op *drawAreaOp, ring *dma.Ring, rowsAvailable int) int {
	ring.ClearFrames()
	ring.SetStorageIdx(0)
	b := dma.NewBuilder(ring, d.txRegister, d.csTarget, dma.CoordRegisters{
		CURH0: regCURH0, CURH1: regCURH1, CURV0: regCURV0, CURV1: regCURV1,
	})

	d.rowSlots = d.rowSlots[:0]
	rows := 0
	for rows < rowsAvailable && op.remaining > 0 {
		slot, n, err := d.buildRow(b, op)
		if err != nil {
			break
		}
		d.rowSlots = append(d.rowSlots, slot)
		op.remaining -= n
		op.rowsCompleted++
		rows++
	}
	return rows
}

// buildRow emits one row's full 21-descriptor sequence (spec.md §4.3's
// sequencing idiom) and returns the rowSlot recording its patchable
// fields, plus the pixel count this row transferred. It uses
// op.rowsCompleted (the operation's cumulative row count, not a
// batch-local index) so a row built in a later batch still lands at the
// correct y (spec.md §4.4 step 4: "y_row = y + rows_completed").
func (d *Device) buildRow(b *dma.Builder, op *drawAreaOp) (rowSlot, int, error) {
	var slot rowSlot

	y := op.py0 + op.rowsCompleted*op.rowStep
	coordBytes := [4]uint16{
		uint16(op.px0), uint16(op.px0),
		uint16(y), uint16(y),
	}
	for i, tag := range coordTags {
		if err := b.AddCSToggle(false, d.cfg.CSHighTransfers); err != nil {
			return slot, 0, err
		}
		addr, err := b.AddCoordBits(coordBytes[i], tag)
		if err != nil {
			return slot, 0, err
		}
		slot.coordRecordAddr[i] = addr
		if err := b.AddDummy(d.cfg.DummyTransfers); err != nil {
			return slot, 0, err
		}
		if err := b.AddCSToggle(true, d.cfg.CSHighTransfers); err != nil {
			return slot, 0, err
		}
	}

	n := op.remaining
	if n > op.width {
		n = op.width
	}
	rowStart := op.rowsCompleted * op.width * 2
	pixelBuf := op.pixels[rowStart : rowStart+n*2]

	if err := b.AddCSToggle(false, d.cfg.CSHighTransfers); err != nil {
		return slot, 0, err
	}
	if _, err := b.AddSPIDrawPixels(regMRWC, pixelBuf); err != nil {
		return slot, 0, err
	}
	slot.pixelDescIndex = b.RingSize() - 1
	if err := b.AddDummy(d.cfg.DummyTransfers); err != nil {
		return slot, 0, err
	}
	if err := b.AddCSToggle(true, d.cfg.CSHighTransfers); err != nil {
		return slot, 0, err
	}

	return slot, n, nil
}

// hotPatchRows reuses the row templates left in the ring by the prior
// batch, overwriting only the coordinate bytes and the pixel-block
// descriptor's source address and transfer count (spec.md §4.4's hot
// patch path), up to rowsAvailable or until the available pixel-area
// templates or the data runs out.
func (d *Device) hotPatchRows(op *drawAreaOp, ring *dma.Ring, rowsAvailable int) int {
	rows := 0
	for rows < rowsAvailable && rows < len(d.rowSlots) && op.remaining > 0 {
		slot := d.rowSlots[rows]

		y := op.py0 + op.rowsCompleted*op.rowStep
		coordBytes := [4]uint16{
			uint16(op.px0), uint16(op.px0),
			uint16(y), uint16(y),
		}
		for i := range coordTags {
			patchCoordByte(slot.coordRecordAddr[i], coordBytes[i], i%2 == 1)
		}

		n := op.remaining
		if n > op.width {
			n = op.width
		}
		rowStart := op.rowsCompleted * op.width * 2
		pixelBuf := op.pixels[rowStart : rowStart+n*2]

		desc := ring.Get(slot.pixelDescIndex)
		desc.SourceAddress = uintptr(unsafe.Pointer(&pixelBuf[0]))
		desc.ControlA.TransferCount = uint32(n * 2)

		op.remaining -= n
		op.rowsCompleted++
		rows++
	}
	return rows
}

// patchCoordByte overwrites the coordinate_byte cell (the 4th byte) of
// a previously-staged coordinate-entry record in place, picking the low
// or high byte of value per high.
func patchCoordByte(recordAddr uintptr, value uint16, high bool) {
	b := byte(value)
	if high {
		b = byte(value >> 8)
	}
	cell := (*byte)(unsafe.Pointer(recordAddr + 3))
	*cell = b
}
