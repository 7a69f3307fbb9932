package ra8875

import "time"

const (
	regDCR byte = 0x90

	dcrLineSquTriStart byte = 0x80
	dcrLineSquTriStop  byte = 0x00
	dcrFill            byte = 0x20
	dcrDrawSquare      byte = 0x10
	dcrLineSquTriBusy  byte = 0x80
)

// writeReg implements the "command write" + "data write" wire framing
// of spec.md §6, for a single register.
func (d *Device) writeReg(reg, value byte) error {
	d.bus.Select()
	defer d.bus.Deselect()
	if err := d.bus.Transfer([]byte{cmdWrite, reg}, nil); err != nil {
		return err
	}
	return d.bus.Transfer([]byte{dataWrite, value}, nil)
}

// readReg implements the "command write" + "data read" wire framing.
func (d *Device) readReg(reg byte) (byte, error) {
	d.bus.Select()
	defer d.bus.Deselect()
	if err := d.bus.Transfer([]byte{cmdWrite, reg}, nil); err != nil {
		return 0, err
	}
	rx := make([]byte, 2)
	if err := d.bus.Transfer([]byte{dataRead, 0}, rx); err != nil {
		return 0, err
	}
	return rx[1], nil
}

// readStatus implements the "status read" wire framing (spec.md §6).
func (d *Device) readStatus() (byte, error) {
	d.bus.Select()
	defer d.bus.Deselect()
	rx := make([]byte, 2)
	if err := d.bus.Transfer([]byte{statusRead, 0}, rx); err != nil {
		return 0, err
	}
	return rx[1], nil
}

// pollStatus spins on readReg(reg)&waitFlag until it clears, bounded by
// Config.DMATimeout (spec.md §9's "a defensive port should add one" —
// the original's waitPoll has no timeout at all).
func (d *Device) pollStatus(reg, waitFlag byte) error {
	deadline := time.Now().Add(d.cfg.DMATimeout)
	for {
		v, err := d.readReg(reg)
		if err != nil {
			return err
		}
		if v&waitFlag == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return &Error{Kind: KindTimeout}
		}
	}
}

// FillRectLegacy issues the historical two-write fillRect with no
// arguments: it relies entirely on a cursor position and color already
// programmed by a prior call, and is preserved only for compatibility
// with callers that depended on that implicit state (spec.md §9's open
// question on the argument-less fillRect).
//
// Deprecated: prefer driving the drawing-control register with explicit
// geometry; this method is a direct port of dead-looking legacy
// behavior, not a recommended API.
func (d *Device) FillRectLegacy() error {
	if err := d.writeReg(regDCR, dcrLineSquTriStop|dcrDrawSquare); err != nil {
		return err
	}
	if err := d.writeReg(regDCR, dcrLineSquTriStart|dcrFill|dcrDrawSquare); err != nil {
		return err
	}
	return d.pollStatus(regDCR, dcrLineSquTriBusy)
}
